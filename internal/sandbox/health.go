package sandbox

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/echoface/admob-adapter/internal/admob"
)

// main queue must drain within this to count as healthy
const queueProbeTimeout = time.Second

// HealthHandler handles health check requests
type HealthHandler struct {
	appCtx    *SandboxContext
	startTime time.Time

	// Metrics
	healthCheckTotal    prometheus.Counter
	healthCheckDuration prometheus.Histogram
	lastHealthCheckTime prometheus.Gauge
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
	Checks     map[string]bool            `json:"checks,omitempty"`
}

// ComponentStatus represents the status of a component
type ComponentStatus struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(appCtx *SandboxContext, registry prometheus.Registerer) *HealthHandler {
	factory := promauto.With(registry)
	namespace := appCtx.Config.Monitoring.Prometheus.Namespace
	return &HealthHandler{
		appCtx:    appCtx,
		startTime: time.Now(),
		healthCheckTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_check_requests_total",
			Help:      "Total number of health check requests",
		}),
		healthCheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "health_check_duration_seconds",
			Help:      "Duration of health checks",
			Buckets:   prometheus.DefBuckets,
		}),
		lastHealthCheckTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_check_last_time_seconds",
			Help:      "Unix timestamp of the last health check",
		}),
	}
}

// HealthCheck handles the main health check endpoint
func (hh *HealthHandler) HealthCheck(c *gin.Context) {
	start := time.Now()
	defer func() {
		hh.healthCheckDuration.Observe(time.Since(start).Seconds())
		hh.lastHealthCheckTime.SetToCurrentTime()
		hh.healthCheckTotal.Inc()
	}()

	checks := map[string]bool{
		"application": hh.appCtx.IsApplicationHealthy(),
		"main_queue":  hh.checkMainQueue(c.Request.Context()),
	}
	healthy := true
	for _, ok := range checks {
		healthy = healthy && ok
	}

	status, httpStatus := "healthy", http.StatusOK
	if !healthy {
		status, httpStatus = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Uptime:     time.Since(hh.startTime).String(),
		Version:    admob.AdapterVersion,
		Components: hh.getComponentStatus(),
		Checks:     checks,
	})
}

// LivenessProbe handles Kubernetes liveness probe
func (hh *HealthHandler) LivenessProbe(c *gin.Context) {
	if hh.appCtx.IsApplicationHealthy() {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "timestamp": time.Now()})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "dead", "timestamp": time.Now()})
}

// ReadinessProbe is ready once the partner SDK has been set up.
func (hh *HealthHandler) ReadinessProbe(c *gin.Context) {
	checks := map[string]bool{
		"adapter_set_up": hh.appCtx.Adapter.IsSetUp(),
		"healthy":        hh.appCtx.IsApplicationHealthy(),
	}

	status, responseStatus := http.StatusOK, "ready"
	if !checks["adapter_set_up"] || !checks["healthy"] {
		status, responseStatus = http.StatusServiceUnavailable, "not_ready"
	}

	c.JSON(status, gin.H{
		"status":    responseStatus,
		"timestamp": time.Now(),
		"checks":    checks,
	})
}

func (hh *HealthHandler) checkMainQueue(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, queueProbeTimeout)
	defer cancel()
	return hh.appCtx.MainQueue.Flush(ctx) == nil
}

func (hh *HealthHandler) getComponentStatus() map[string]ComponentStatus {
	now := time.Now()

	adapterStatus := ComponentStatus{Status: "not_set_up", LastCheck: now}
	if hh.appCtx.Adapter.IsSetUp() {
		adapterStatus.Status = "ready"
	}
	adapterStatus.Message = "partner sdk " + hh.appCtx.Adapter.PartnerInfo().PartnerSDKVersion

	source, etag, loadedAt := hh.appCtx.ConfigStatus()
	configStatus := ComponentStatus{Status: "loaded", Message: "source=" + source, LastCheck: loadedAt}
	if etag != "" {
		configStatus.Message += " etag=" + etag
	}

	return map[string]ComponentStatus{
		"adapter":        adapterStatus,
		"partner_config": configStatus,
	}
}
