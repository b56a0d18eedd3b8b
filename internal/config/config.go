package config

import (
	"strings"
	"time"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk/simulated"
	"github.com/echoface/admob-adapter/pkg/config"
	"github.com/echoface/admob-adapter/pkg/retry"
)

// ServiceName 服务名，同时作为环境变量前缀 (ADAPTER_SANDBOX_PORT ...)
const ServiceName = "adapter_sandbox"

// SandboxConfig 沙箱服务配置
type SandboxConfig struct {
	config.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Adapter AdapterConfig    `mapstructure:"adapter" yaml:"adapter"`
	Partner simulated.Config `mapstructure:"partner" yaml:"partner"`
	S3      S3Config         `mapstructure:"s3" yaml:"s3"`
}

// AdapterConfig 适配器配置
type AdapterConfig struct {
	// LoadTimeout bounds how long a request waits for a load or show result.
	LoadTimeout   time.Duration                  `mapstructure:"load_timeout" yaml:"load_timeout"`
	SetUpTimeout  time.Duration                  `mapstructure:"setup_timeout" yaml:"setup_timeout"`
	TestDeviceIDs []string                       `mapstructure:"test_device_ids" yaml:"test_device_ids"`
	Configuration mediation.PartnerConfiguration `mapstructure:"configuration" yaml:"configuration"`

	// AutoSetUp sets the adapter up when the service starts.
	AutoSetUp bool `mapstructure:"auto_setup" yaml:"auto_setup"`
}

// S3Config 合作方配置存储 (S3/minio)
type S3Config struct {
	Enabled         bool          `mapstructure:"enabled" yaml:"enabled"`
	Endpoint        string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	BucketName      string        `mapstructure:"bucket_name" yaml:"bucket_name"`
	ObjectKey       string        `mapstructure:"object_key" yaml:"object_key"`
	ScanInterval    time.Duration `mapstructure:"scan_interval" yaml:"scan_interval"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Retry applies to the initial load only; the watch loop retries on its next tick.
	Retry retry.Config `mapstructure:"retry" yaml:"retry"`
}

// DefaultSandboxConfig 默认配置
func DefaultSandboxConfig() *SandboxConfig {
	return &SandboxConfig{
		BaseConfig: *config.DefaultBaseConfig(),
		Adapter: AdapterConfig{
			LoadTimeout:  5 * time.Second,
			SetUpTimeout: 10 * time.Second,
		},
		Partner: simulated.Config{Version: simulated.DefaultVersion},
		S3: S3Config{
			ScanInterval: 30 * time.Second,
			Timeout:      5 * time.Second,
			Retry:        retry.DefaultConfig(),
		},
	}
}

// LoadSandboxConfig 根据 RUN_TYPE 加载配置
func LoadSandboxConfig() (*SandboxConfig, error) {
	cfg := DefaultSandboxConfig()
	if err := config.NewLoader(ServiceName).Load(cfg); err != nil {
		return nil, err
	}
	cfg.Adapter.Configuration.Consents = CanonicalConsents(cfg.Adapter.Configuration.Consents)
	return cfg, nil
}

// CanonicalConsents restores the case of known consent keys. viper lowercases
// map keys, so IABTCF_TCString arrives as iabtcf_tcstring.
func CanonicalConsents(consents map[mediation.ConsentKey]mediation.ConsentValue) map[mediation.ConsentKey]mediation.ConsentValue {
	if consents == nil {
		return nil
	}
	out := make(map[mediation.ConsentKey]mediation.ConsentValue, len(consents))
	for key, value := range consents {
		for _, known := range mediation.AllConsentKeys() {
			if strings.EqualFold(string(key), string(known)) {
				key = known
				break
			}
		}
		out[key] = value
	}
	return out
}
