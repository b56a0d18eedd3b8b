package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/echoface/admob-adapter/internal/config"
	"github.com/echoface/admob-adapter/internal/sandbox"
	pkgconfig "github.com/echoface/admob-adapter/pkg/config"
)

func main() {
	// Load configuration based on RUN_TYPE
	cfg, err := config.LoadSandboxConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if pkgconfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize application context
	appCtx := sandbox.NewSandboxContext(cfg, logger)
	sandbox.RegisterRoutes(appCtx)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := appCtx.LoadPartnerConfiguration(ctx); err != nil {
		logger.Fatal("load partner configuration failed", "error", err)
	}

	if cfg.Adapter.AutoSetUp {
		go func() {
			if _, err := appCtx.SetUpAdapter(ctx); err != nil {
				logger.Error("adapter set-up at start failed", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("adapter sandbox starting", "address", cfg.GetAddress(), "run_type", pkgconfig.GetRunType())
		if err := appCtx.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start adapter sandbox", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("adapter sandbox shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := appCtx.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
