// Package sandbox hosts the AdMob adapter behind an HTTP API, playing the part
// of the mediation framework: it owns delegates, issues load requests and
// forwards privacy signals.
package sandbox

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/echoface/admob-adapter/internal/admob"
	"github.com/echoface/admob-adapter/internal/config"
	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk/simulated"
	"github.com/echoface/admob-adapter/pkg/concurrent"
	"github.com/echoface/admob-adapter/pkg/logger"
)

const (
	configSourceYAML = "yaml"
	configSourceS3   = "s3"
)

// RootViewController is the presentation context the sandbox hands to ads.
type RootViewController struct {
	Name string `json:"name"`
}

// SandboxContext 沙箱全局上下文
type SandboxContext struct {
	Config *config.SandboxConfig
	Logger logger.Logger

	// HTTP server
	HTTPServer *http.Server
	Router     *gin.Engine

	// Metrics
	MetricsRegistry *prometheus.Registry

	// Partner side
	MainQueue *concurrent.MainQueue
	SDK       *simulated.SDK
	Adapter   *admob.Adapter

	// Mediation side
	Delegates *mediation.DelegateRegistry
	Ads       *AdStore

	RootViewController *RootViewController

	// Context for graceful shutdown
	ShutdownCtx    context.Context
	ShutdownCancel context.CancelFunc

	mu             sync.RWMutex
	isHealthy      bool
	partnerConfig  mediation.PartnerConfiguration
	configSource   string
	configETag     string
	configLoadedAt time.Time
	configLoader   *PartnerConfigLoader
}

// NewSandboxContext wires the partner SDK, the adapter and the HTTP server.
// The partner configuration starts from yaml; LoadPartnerConfiguration may
// replace it from S3.
func NewSandboxContext(cfg *config.SandboxConfig, log logger.Logger) *SandboxContext {
	if cfg == nil {
		cfg = config.DefaultSandboxConfig()
	}
	if log == nil {
		log = logger.NewNop()
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	queue := concurrent.NewMainQueue()
	sdk := simulated.New(cfg.Partner, queue, log)
	adapter := admob.New(sdk,
		admob.WithLogger(log),
		admob.WithMainQueue(queue),
		admob.WithMetrics(admob.NewMetrics(registry, cfg.Monitoring.Prometheus.Namespace)),
		admob.WithTestDeviceIdentifiers(cfg.Adapter.TestDeviceIDs...),
	)

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	httpServer := &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &SandboxContext{
		Config:             cfg,
		Logger:             log,
		HTTPServer:         httpServer,
		Router:             router,
		MetricsRegistry:    registry,
		MainQueue:          queue,
		SDK:                sdk,
		Adapter:            adapter,
		Delegates:          mediation.NewDelegateRegistry(),
		Ads:                NewAdStore(),
		RootViewController: &RootViewController{Name: "sandbox_root"},
		ShutdownCtx:        shutdownCtx,
		ShutdownCancel:     shutdownCancel,
		isHealthy:          true,
		partnerConfig:      cfg.Adapter.Configuration,
		configSource:       configSourceYAML,
		configLoadedAt:     time.Now(),
	}
}

// LoadPartnerConfiguration fetches the partner configuration from S3 when
// enabled and keeps watching it. A no-op for yaml-only setups.
func (sc *SandboxContext) LoadPartnerConfiguration(ctx context.Context) error {
	s3cfg := sc.Config.S3
	if !s3cfg.Enabled {
		return nil
	}

	loader, err := NewPartnerConfigLoader(&s3cfg, sc.Logger)
	if err != nil {
		return err
	}
	snapshot, err := loader.LoadWithRetry(ctx, s3cfg.Retry)
	if err != nil {
		return fmt.Errorf("initial partner configuration load: %w", err)
	}

	sc.mu.Lock()
	sc.configLoader = loader
	sc.mu.Unlock()
	sc.ApplyPartnerConfiguration(snapshot, configSourceS3)

	go func() {
		for snapshot := range loader.Watch(sc.ShutdownCtx, s3cfg.ScanInterval, snapshot.ETag) {
			sc.ApplyPartnerConfiguration(snapshot, configSourceS3)
		}
	}()
	return nil
}

// ApplyPartnerConfiguration stores snapshot and pushes changed privacy
// signals to the adapter.
func (sc *SandboxContext) ApplyPartnerConfiguration(snapshot *PartnerConfigSnapshot, source string) {
	sc.mu.Lock()
	prev := sc.partnerConfig
	sc.partnerConfig = snapshot.Configuration
	sc.configSource = source
	sc.configETag = snapshot.ETag
	sc.configLoadedAt = snapshot.LoadedAt
	sc.mu.Unlock()

	next := snapshot.Configuration
	if changed := consentChanges(prev.Consents, next.Consents); len(changed) > 0 {
		sc.Adapter.SetConsents(next.Consents, changed)
	}
	if prev.IsUserUnderage != next.IsUserUnderage {
		sc.Adapter.SetIsUserUnderage(next.IsUserUnderage)
	}
	sc.Logger.Info("partner configuration applied", "source", source, "etag", snapshot.ETag)
}

// SetUpAdapter runs adapter set-up with the current partner configuration and
// waits for the outcome, at most adapter.setup_timeout.
func (sc *SandboxContext) SetUpAdapter(ctx context.Context) (mediation.PartnerDetails, error) {
	var (
		details  mediation.PartnerDetails
		setupErr error
		done     = make(chan struct{})
	)
	sc.Adapter.SetUp(sc.PartnerConfiguration(), func(d mediation.PartnerDetails, err error) {
		details, setupErr = d, err
		close(done)
	})

	if err := await(ctx, done, sc.Config.Adapter.SetUpTimeout); err != nil {
		return nil, err
	}
	return details, setupErr
}

// PartnerConfiguration returns the configuration used for SetUp.
func (sc *SandboxContext) PartnerConfiguration() mediation.PartnerConfiguration {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.partnerConfig
}

// ConfigStatus 配置来源信息
func (sc *SandboxContext) ConfigStatus() (source, etag string, loadedAt time.Time) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.configSource, sc.configETag, sc.configLoadedAt
}

// SetHealthStatus sets the application health status
func (sc *SandboxContext) SetHealthStatus(healthy bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.isHealthy = healthy
}

// IsApplicationHealthy returns the application health status
func (sc *SandboxContext) IsApplicationHealthy() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.isHealthy
}

// Shutdown 优雅关闭: 停止HTTP服务, 失效所有广告, 关闭主队列
func (sc *SandboxContext) Shutdown(ctx context.Context) error {
	sc.SetHealthStatus(false)
	sc.ShutdownCancel()

	err := sc.HTTPServer.Shutdown(ctx)
	for _, e := range sc.Ads.drain() {
		sc.invalidate(e)
	}
	sc.MainQueue.Close()
	return err
}

func (sc *SandboxContext) invalidate(e *adEntry) {
	if err := e.ad.Invalidate(); err != nil {
		sc.Logger.Warn("invalidate ad failed", "ad_id", e.id, "error", err)
	}
	sc.Delegates.Release(e.delegate)
	e.markInvalidated()
}
