package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologLogger implements Logger interface using zerolog
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger creates a new zerolog-based logger
func NewZerologLogger(config Config) (*ZerologLogger, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || config.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			NoColor:    config.Environment != Dev,
		},
	}
	if config.Environment != Dev && config.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologLogger{logger: logger}, nil
}

func (z *ZerologLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.logger.Debug().Fields(parseKeyValues(keysAndValues...)).Msg(msg)
}

func (z *ZerologLogger) Info(msg string, keysAndValues ...interface{}) {
	z.logger.Info().Fields(parseKeyValues(keysAndValues...)).Msg(msg)
}

func (z *ZerologLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.logger.Warn().Fields(parseKeyValues(keysAndValues...)).Msg(msg)
}

func (z *ZerologLogger) Error(msg string, keysAndValues ...interface{}) {
	z.logger.Error().Fields(parseKeyValues(keysAndValues...)).Msg(msg)
}

func (z *ZerologLogger) Fatal(msg string, keysAndValues ...interface{}) {
	z.logger.Fatal().Fields(parseKeyValues(keysAndValues...)).Msg(msg)
}

func (z *ZerologLogger) With(keysAndValues ...interface{}) Logger {
	return &ZerologLogger{logger: z.logger.With().Fields(parseKeyValues(keysAndValues...)).Logger()}
}

func parseKeyValues(keysAndValues ...interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	keyValuePairs(keysAndValues, func(key string, value interface{}) {
		fields[key] = value
	})
	return fields
}
