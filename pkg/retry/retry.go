package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

// ErrorType 错误类型
type ErrorType int

const (
	TimeoutError ErrorType = iota // 超时错误
	NetworkError                  // 网络错误
	ProtocolError                 // 协议错误
	RateLimitError                // 限流错误
	InternalError                 // 内部错误
)

// RetryableError 带类型的错误, 决定是否重试
type RetryableError struct {
	Type ErrorType
	Err  error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable 检查错误是否可重试; only ProtocolError is final
func (e *RetryableError) IsRetryable() bool {
	return e.Type != ProtocolError
}

// Classify tags err with t. A nil err stays nil.
func Classify(t ErrorType, err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Type: t, Err: err}
}

// Config 重试配置
type Config struct {
	MaxRetries        int           `mapstructure:"max_retries" yaml:"max_retries"`
	InitialDelay      time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier" yaml:"backoff_multiplier"`
}

// DefaultConfig 默认重试配置
func DefaultConfig() Config {
	return Config{
		MaxRetries:        2,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Func 可重试函数类型
type Func[T any] func(ctx context.Context) (T, error)

// Do runs fn until it succeeds, returns a non-retryable error, or the retries
// run out. Untyped errors are retried.
func Do[T any](ctx context.Context, cfg Config, fn Func[T]) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if !isRetryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(backoff(attempt, cfg)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}

func isRetryable(err error) bool {
	var typed *RetryableError
	if errors.As(err, &typed) {
		return typed.IsRetryable()
	}
	return !errors.Is(err, context.Canceled)
}

// backoff 计算退避延迟
func backoff(attempt int, cfg Config) time.Duration {
	multiplier := cfg.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(multiplier, float64(attempt)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return delay
}
