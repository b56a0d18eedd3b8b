package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoface/admob-adapter/internal/mediation"
)

const sandboxYAML = `
port: 9090
adapter:
  load_timeout: 2s
  test_device_ids: [device-1]
  configuration:
    credentials:
      app_id: ca-app-pub-1~2
    consents:
      IABTCF_TCString: CPXxRfAPXxRfAAfKABENB-CgAAAAAAAAAAYgAAAAAAAA
      ccpa_opt_in: denied
    is_user_underage: true
partner:
  version: 11.0.0
  default:
    latency_ms: 20
  placements:
    No-Fill:
      load_error_code: 1
s3:
  enabled: true
  bucket_name: cfg
  object_key: partner/admob.json
`

func TestLoadSandboxConfig(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "conf", "test.yaml"), []byte(sandboxYAML), 0o644))
	t.Setenv("CONFIG_PATH", root)
	t.Setenv("RUN_TYPE", "test")

	cfg, err := LoadSandboxConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	// unset values keep their defaults
	assert.Equal(t, 10*time.Second, cfg.Adapter.SetUpTimeout)
	assert.Equal(t, "admob_adapter", cfg.Monitoring.Prometheus.Namespace)

	assert.Equal(t, 2*time.Second, cfg.Adapter.LoadTimeout)
	assert.Equal(t, []string{"device-1"}, cfg.Adapter.TestDeviceIDs)
	assert.Equal(t, "ca-app-pub-1~2", cfg.Adapter.Configuration.Credentials["app_id"])
	assert.True(t, cfg.Adapter.Configuration.IsUserUnderage)
	assert.Equal(t, mediation.ConsentDenied, cfg.Adapter.Configuration.Consents[mediation.ConsentKeyCCPAOptIn])
	assert.Contains(t, cfg.Adapter.Configuration.Consents, mediation.ConsentKeyTCF)

	assert.Equal(t, "11.0.0", cfg.Partner.Version)
	noFill := cfg.Partner.ScenarioFor("No-Fill")
	require.NotNil(t, noFill.LoadErrorCode)
	assert.Equal(t, 1, *noFill.LoadErrorCode)
	assert.Equal(t, 20, cfg.Partner.ScenarioFor("other").LatencyMS)

	assert.True(t, cfg.S3.Enabled)
	assert.Equal(t, "cfg", cfg.S3.BucketName)
	assert.Equal(t, 30*time.Second, cfg.S3.ScanInterval)
}

func TestCanonicalConsents(t *testing.T) {
	assert.Nil(t, CanonicalConsents(nil))
	got := CanonicalConsents(map[mediation.ConsentKey]mediation.ConsentValue{
		"iabtcf_tcstring":     "tc",
		"iabusprivacy_string": "1YNN",
		"GDPR_Consent_Given":  mediation.ConsentGranted,
		"other":               "x",
	})
	assert.Equal(t, map[mediation.ConsentKey]mediation.ConsentValue{
		mediation.ConsentKeyTCF:              "tc",
		mediation.ConsentKeyUSP:              "1YNN",
		mediation.ConsentKeyGDPRConsentGiven: mediation.ConsentGranted,
		"other":                              "x",
	}, got)
}

func TestLoadSandboxConfig_LocalRunTypesWithoutS3(t *testing.T) {
	// the checked-in configs must start without a MinIO at hand
	t.Setenv("CONFIG_PATH", filepath.Join("..", ".."))
	for _, runType := range []string{"test", "dev"} {
		t.Setenv("RUN_TYPE", runType)
		cfg, err := LoadSandboxConfig()
		require.NoError(t, err, runType)
		assert.False(t, cfg.S3.Enabled, runType)
	}
}
