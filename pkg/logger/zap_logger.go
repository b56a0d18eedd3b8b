package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapLogger implements Logger interface using zap
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger creates a new zap-based logger
func NewZapLogger(config Config) (*ZapLogger, error) {
	level := getZapLevel(config.LogLevel)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if config.Environment == Dev {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}
	// Dev never writes to disk.
	if config.Environment != Dev && config.LogFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
		cores = append(cores, zapcore.NewCore(encoder, fileWriter, level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return &ZapLogger{logger: logger}, nil
}

func newZapNop() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

func (z *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.logger.Debug(msg, convertToZapFields(keysAndValues...)...)
}

func (z *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	z.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (z *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.logger.Warn(msg, convertToZapFields(keysAndValues...)...)
}

func (z *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	z.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

func (z *ZapLogger) Fatal(msg string, keysAndValues ...interface{}) {
	z.logger.Fatal(msg, convertToZapFields(keysAndValues...)...)
}

func (z *ZapLogger) With(keysAndValues ...interface{}) Logger {
	return &ZapLogger{logger: z.logger.With(convertToZapFields(keysAndValues...)...)}
}

// Sync flushes any buffered log entries
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

func getZapLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	keyValuePairs(keysAndValues, func(key string, value interface{}) {
		if err, ok := value.(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			return
		}
		fields = append(fields, zap.Any(key, value))
	})
	return fields
}
