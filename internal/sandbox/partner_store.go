package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/echoface/admob-adapter/internal/config"
	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/pkg/jsonx"
	"github.com/echoface/admob-adapter/pkg/logger"
	"github.com/echoface/admob-adapter/pkg/retry"
)

// PartnerConfigLoader 从S3读取合作方配置 (JSON对象)
type PartnerConfigLoader struct {
	client     *minio.Client
	bucketName string
	objectKey  string
	timeout    time.Duration
	logger     logger.Logger
}

// PartnerConfigSnapshot is one decoded version of the configuration object.
type PartnerConfigSnapshot struct {
	Configuration mediation.PartnerConfiguration
	ETag          string
	LoadedAt      time.Time
}

// NewPartnerConfigLoader 创建配置加载器
func NewPartnerConfigLoader(cfg *config.S3Config, log logger.Logger) (*PartnerConfigLoader, error) {
	if cfg.BucketName == "" || cfg.ObjectKey == "" {
		return nil, fmt.Errorf("s3 bucket_name and object_key are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &PartnerConfigLoader{
		client:     client,
		bucketName: cfg.BucketName,
		objectKey:  cfg.ObjectKey,
		timeout:    cfg.Timeout,
		logger:     log.With("component", "partner_config_loader", "bucket", cfg.BucketName, "object", cfg.ObjectKey),
	}, nil
}

// Load 读取并解析配置对象
func (l *PartnerConfigLoader) Load(ctx context.Context) (*PartnerConfigSnapshot, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	obj, err := l.client.GetObject(ctx, l.bucketName, l.objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", l.objectKey, classifyS3Error(err))
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat object %s: %w", l.objectKey, classifyS3Error(err))
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", l.objectKey, classifyS3Error(err))
	}

	configuration, err := DecodePartnerConfiguration(buf.Bytes())
	if err != nil {
		return nil, retry.Classify(retry.ProtocolError, fmt.Errorf("object %s: %w", l.objectKey, err))
	}
	return &PartnerConfigSnapshot{
		Configuration: *configuration,
		ETag:          info.ETag,
		LoadedAt:      time.Now(),
	}, nil
}

// LoadWithRetry retries Load on transient failures.
func (l *PartnerConfigLoader) LoadWithRetry(ctx context.Context, cfg retry.Config) (*PartnerConfigSnapshot, error) {
	return retry.Do(ctx, cfg, func(ctx context.Context) (*PartnerConfigSnapshot, error) {
		snapshot, err := l.Load(ctx)
		if err != nil {
			l.logger.Warn("load partner configuration failed", "error", err)
		}
		return snapshot, err
	})
}

// classifyS3Error tags err with a retry type. Missing objects and bad
// credentials are final; timeouts, throttling and server errors are retried.
func classifyS3Error(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return retry.Classify(retry.TimeoutError, err)
	}
	if netErr != nil {
		return retry.Classify(retry.NetworkError, err)
	}

	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return retry.Classify(retry.ProtocolError, err)
	case "SlowDown", "TooManyRequests":
		return retry.Classify(retry.RateLimitError, err)
	case "InternalError", "ServiceUnavailable":
		return retry.Classify(retry.InternalError, err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return retry.Classify(retry.RateLimitError, err)
	case resp.StatusCode >= http.StatusInternalServerError:
		return retry.Classify(retry.InternalError, err)
	}
	return err
}

// Watch 定期重新加载，只在对象变化(ETag)时推送
func (l *PartnerConfigLoader) Watch(ctx context.Context, interval time.Duration, lastETag string) <-chan *PartnerConfigSnapshot {
	changeCh := make(chan *PartnerConfigSnapshot, 1)
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		defer close(changeCh)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				snapshot, err := l.Load(ctx)
				if err != nil {
					l.logger.Warn("reload partner configuration failed", "error", err)
					continue
				}
				if snapshot.ETag == lastETag {
					continue
				}
				lastETag = snapshot.ETag
				select {
				case changeCh <- snapshot:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return changeCh
}

// DecodePartnerConfiguration parses a JSON partner configuration document.
func DecodePartnerConfiguration(data []byte) (*mediation.PartnerConfiguration, error) {
	configuration := &mediation.PartnerConfiguration{}
	if err := jsonx.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("failed to unmarshal partner configuration: %w", err)
	}
	configuration.Consents = config.CanonicalConsents(configuration.Consents)
	return configuration, nil
}

// consentChanges lists keys whose value differs between two consent maps,
// including keys present on one side only.
func consentChanges(prev, next map[mediation.ConsentKey]mediation.ConsentValue) []mediation.ConsentKey {
	var changed []mediation.ConsentKey
	for key, value := range next {
		if old, ok := prev[key]; !ok || old != value {
			changed = append(changed, key)
		}
	}
	for key := range prev {
		if _, ok := next[key]; !ok {
			changed = append(changed, key)
		}
	}
	return changed
}
