package sandbox

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/echoface/admob-adapter/internal/admob"
)

// RegisterRoutes installs the middleware and every endpoint on appCtx.Router.
func RegisterRoutes(appCtx *SandboxContext) {
	r := appCtx.Router
	monitoring := appCtx.Config.Monitoring

	if monitoring.Prometheus.Enabled {
		r.Use(NewHTTPMetrics(appCtx.MetricsRegistry, monitoring.Prometheus.Namespace).Handler())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "AdMob adapter sandbox is running!",
			"partner": appCtx.Adapter.PartnerInfo(),
			"version": admob.AdapterVersion,
			"healthy": appCtx.IsApplicationHealthy(),
		})
	})

	if monitoring.HealthCheck.Enabled {
		healthHandler := NewHealthHandler(appCtx, appCtx.MetricsRegistry)
		endpoint := orDefault(monitoring.HealthCheck.Endpoint, "/health")
		r.GET(endpoint, healthHandler.HealthCheck)
		r.GET(endpoint+"/live", healthHandler.LivenessProbe)
		r.GET(endpoint+"/ready", healthHandler.ReadinessProbe)
	}

	if monitoring.Prometheus.Enabled {
		r.GET(orDefault(monitoring.Prometheus.Endpoint, "/metrics"),
			gin.WrapH(promhttp.HandlerFor(appCtx.MetricsRegistry, promhttp.HandlerOpts{})))
	}

	adapterHandler := NewAdapterHandler(appCtx)
	adapterGroup := r.Group("/adapter")
	{
		adapterGroup.POST("/setup", adapterHandler.SetUp)
		adapterGroup.GET("/bidder-info", adapterHandler.BidderInfo)
		adapterGroup.PUT("/consents", adapterHandler.SetConsents)
		adapterGroup.PUT("/underage", adapterHandler.SetUnderage)
		adapterGroup.PUT("/test-devices", adapterHandler.SetTestDevices)
	}

	adHandler := NewAdHandler(appCtx)
	adGroup := r.Group("/ads")
	{
		adGroup.POST("", adHandler.Load)
		adGroup.GET("/:id", adHandler.Get)
		adGroup.POST("/:id/show", adHandler.Show)
		adGroup.DELETE("/:id", adHandler.Invalidate)
	}

	r.POST("/partner/placements/:placement/:event", adHandler.TriggerPartnerEvent)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
