package logger

// Logger is the structured logger used across the adapter and the sandbox host.
// keysAndValues are alternating string keys and arbitrary values.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})

	// With returns a child logger that attaches keysAndValues to every entry.
	With(keysAndValues ...interface{}) Logger
}

// Environment represents the deployment environment
type Environment string

const (
	Dev  Environment = "dev"
	Test Environment = "test"
	Prod Environment = "prod"
)

// Config holds the configuration for logger initialization
type Config struct {
	Environment Environment `mapstructure:"environment" yaml:"environment"`
	LogLevel    string      `mapstructure:"level" yaml:"level"`
	LogFile     string      `mapstructure:"file_path" yaml:"file_path"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`       // megabytes before rotation
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"` // rotated files to keep
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`         // days to keep rotated files
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
}

// keyValuePairs walks alternating key/value arguments, skipping non-string keys
// and a trailing key without value.
func keyValuePairs(keysAndValues []interface{}, fn func(key string, value interface{})) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fn(key, keysAndValues[i+1])
	}
}
