package config

import (
	"fmt"
	"time"

	"github.com/echoface/admob-adapter/pkg/logger"
)

// BaseConfig 基础配置（所有服务通用）
type BaseConfig struct {
	// 服务器配置
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// 日志配置
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// 监控配置
	Monitoring MonitoringConfig `mapstructure:"monitoring" yaml:"monitoring"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	// Type selects the backend: zap or zerolog.
	Type          string `mapstructure:"type" yaml:"type"`
	logger.Config `mapstructure:",squash" yaml:",inline"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus  PrometheusConfig  `mapstructure:"prometheus" yaml:"prometheus"`
	HealthCheck HealthCheckConfig `mapstructure:"health_check" yaml:"health_check"`
}

// PrometheusConfig Prometheus配置
type PrometheusConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// HealthCheckConfig 健康检查配置
type HealthCheckConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// DefaultBaseConfig 获取默认基础配置
func DefaultBaseConfig() *BaseConfig {
	return &BaseConfig{
		Host:            "localhost",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Logging: LoggingConfig{
			Type:   string(logger.Zap),
			Config: logger.DefaultConfig(),
		},
		Monitoring: MonitoringConfig{
			Prometheus:  PrometheusConfig{Enabled: true, Endpoint: "/metrics", Namespace: "admob_adapter"},
			HealthCheck: HealthCheckConfig{Enabled: true, Endpoint: "/health"},
		},
	}
}

// GetAddress 获取服务器地址
func (c *BaseConfig) GetAddress() string {
	host, port := c.Host, c.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// NewLogger builds the configured logger backend.
func (c *BaseConfig) NewLogger() (logger.Logger, error) {
	return logger.New(logger.LoggerType(c.Logging.Type), c.Logging.Config)
}
