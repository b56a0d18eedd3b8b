package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServiceConfig struct {
	BaseConfig `mapstructure:",squash"`
	Feature    string `mapstructure:"feature"`
}

func writeConf(t *testing.T, dir, runType, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, runType+".yaml"), []byte(body), 0o644))
}

func TestLoader_LoadByRunType(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, dir, "test", `
host: 0.0.0.0
port: 9090
read_timeout: 5s
logging:
  type: zerolog
  level: debug
monitoring:
  prometheus:
    enabled: true
    namespace: sandbox
feature: hybrid
`)
	t.Setenv("RUN_TYPE", "test")

	var cfg testServiceConfig
	loader := &Loader{ServiceName: "loader_test", ConfigDir: dir}
	require.NoError(t, loader.Load(&cfg))

	assert.Equal(t, "0.0.0.0:9090", cfg.GetAddress())
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "zerolog", cfg.Logging.Type)
	assert.Equal(t, "debug", cfg.Logging.LogLevel)
	assert.Equal(t, "sandbox", cfg.Monitoring.Prometheus.Namespace)
	assert.Equal(t, "hybrid", cfg.Feature)
}

func TestLoader_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConf(t, dir, "test", "port: 9090\n")
	t.Setenv("RUN_TYPE", "test")
	t.Setenv("LOADER_TEST_PORT", "7070")

	var cfg testServiceConfig
	loader := &Loader{ServiceName: "loader_test", ConfigDir: dir}
	require.NoError(t, loader.Load(&cfg))
	assert.Equal(t, 7070, cfg.Port)
}

func TestLoader_InvalidRunType(t *testing.T) {
	t.Setenv("RUN_TYPE", "staging")
	var cfg testServiceConfig
	err := (&Loader{ServiceName: "x", ConfigDir: t.TempDir()}).Load(&cfg)
	assert.ErrorContains(t, err, "invalid RUN_TYPE")
}

func TestLoader_MissingFile(t *testing.T) {
	t.Setenv("RUN_TYPE", "prod")
	var cfg testServiceConfig
	err := (&Loader{ServiceName: "x", ConfigDir: t.TempDir()}).Load(&cfg)
	assert.ErrorContains(t, err, "config file not found")
}

func TestDefaultBaseConfig(t *testing.T) {
	cfg := DefaultBaseConfig()
	assert.Equal(t, "localhost:8080", cfg.GetAddress())
	log, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, log)
}
