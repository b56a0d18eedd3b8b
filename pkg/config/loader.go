package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	RunTypeDev  = "dev"
	RunTypeTest = "test"
	RunTypeProd = "prod"
)

// Loader 通用配置加载器
// Loader reads conf/<RUN_TYPE>.yaml and overlays environment variables
// prefixed with the service name (e.g. ADAPTER_SANDBOX_PORT).
type Loader struct {
	ServiceName string
	// ConfigDir overrides the lookup of the conf directory when set.
	ConfigDir string
}

// NewLoader 创建配置加载器
func NewLoader(serviceName string) *Loader {
	return &Loader{
		ServiceName: serviceName,
	}
}

// Load 加载配置文件并解析到目标结构体
func (l *Loader) Load(configStruct interface{}) error {
	runType := GetRunType()
	if runType != RunTypeTest && runType != RunTypeProd && runType != RunTypeDev {
		return fmt.Errorf("invalid RUN_TYPE: %s, must be 'test', 'prod', or 'dev'", runType)
	}

	configFile := filepath.Join(l.getConfigDir(), fmt.Sprintf("%s.yaml", runType))
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", configFile)
	}
	return l.LoadFile(configFile, configStruct)
}

// LoadFile parses a single yaml file into configStruct.
func (l *Loader) LoadFile(configFile string, configStruct interface{}) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(l.ServiceName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	if err := v.Unmarshal(configStruct); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// getConfigDir 获取配置文件目录
// 优先级：ConfigDir字段 > CONFIG_PATH环境变量 > 可执行文件旁的conf目录 > 当前目录的conf
func (l *Loader) getConfigDir() string {
	if l.ConfigDir != "" {
		return l.ConfigDir
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return filepath.Join(configPath, "conf")
	}

	if exePath, err := os.Executable(); err == nil {
		confPath := filepath.Join(filepath.Dir(exePath), "conf")
		if _, err := os.Stat(confPath); err == nil {
			return confPath
		}
	}

	return "conf"
}

// GetRunType 获取当前运行类型
func GetRunType() string {
	runType := os.Getenv("RUN_TYPE")
	if runType == "" {
		return RunTypeTest
	}
	return runType
}

// IsProduction 判断是否为生产环境
func IsProduction() bool {
	return GetRunType() == RunTypeProd
}
