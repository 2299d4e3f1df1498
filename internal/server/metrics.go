package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azargarov/threadpool/internal/config"
)

const readHeaderTimeout = 30 * time.Second

// NewMetricsRouter exposes /metrics for g and a /healthcheck endpoint.
func NewMetricsRouter(g prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthcheck", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	return router
}

// ServeMetrics runs the metrics endpoint until ctx is cancelled, then
// shuts it down within cfg.ShutdownTimeout.
func ServeMetrics(ctx context.Context, cfg config.MetricsConfig, g prometheus.Gatherer) error {
	logger := lg.FromContext(ctx)

	httpServer := http.Server{
		Addr:              cfg.Addr,
		Handler:           NewMetricsRouter(g),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info("metrics server listening", lg.String("addr", httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", lg.Any("error", err))
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", lg.Any("error", err))
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}
