package logger

import "fmt"

// LoggerType represents the type of logger implementation
type LoggerType string

const (
	Zap     LoggerType = "zap"
	Zerolog LoggerType = "zerolog"
)

// Default is the process-wide logger used when a component is not given one.
var Default Logger = MustNew(Zap, DefaultConfig())

func MustNew(loggerType LoggerType, config Config) Logger {
	logger, err := New(loggerType, config)
	if err != nil {
		panic(fmt.Errorf("logger: %w", err))
	}
	return logger
}

// New creates a new logger based on the specified type and configuration
func New(loggerType LoggerType, config Config) (Logger, error) {
	switch loggerType {
	case Zerolog:
		return NewZerologLogger(config)
	case Zap, "":
		return NewZapLogger(config)
	default:
		return nil, fmt.Errorf("unknown logger type %q", loggerType)
	}
}

// DefaultConfig returns a default configuration for the logger
func DefaultConfig() Config {
	return Config{
		Environment: Dev,
		LogLevel:    "info",
		LogFile:     "",
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      30,
		Compress:    true,
	}
}

// NewProduction creates a logger configured for production environment
func NewProduction(loggerType LoggerType, logFile string) (Logger, error) {
	config := DefaultConfig()
	config.Environment = Prod
	config.LogLevel = "info"
	config.LogFile = logFile
	return New(loggerType, config)
}

// NewDevelopment creates a logger configured for development environment
func NewDevelopment(loggerType LoggerType) (Logger, error) {
	config := DefaultConfig()
	config.Environment = Dev
	config.LogLevel = "debug"
	return New(loggerType, config)
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() Logger {
	return newZapNop()
}
