// Command hellopool serves a tiny static site over raw TCP, running every
// connection on a fixed-size worker pool.
//
//	hellopool serve --config hellopool.yaml
//
// Running hellopool without a subcommand is the same as "hellopool serve".
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Sets GOMEMLIMIT from the cgroup memory limit when running in a container.
	_ "github.com/KimMachineGun/automemlimit"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	workerpool "github.com/azargarov/threadpool"
	"github.com/azargarov/threadpool/internal/config"
	"github.com/azargarov/threadpool/internal/server"
)

func main() {
	var configPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Accept connections and answer them on the worker pool",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	root := &cobra.Command{
		Use:           "hellopool",
		Short:         "Static TCP server backed by a fixed-size worker pool",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.AddCommand(serve)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		lg.FromContext(ctx).Error("command failed", lg.Any("error", err))
		stop()
		os.Exit(1)
	}
}

func runServe(ctx context.Context, configPath string) (err error) {
	logger := lg.FromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pool, err := workerpool.NewFromOptions(workerpool.Options{
		Workers:      cfg.Pool.Workers,
		Ctx:          ctx,
		Metrics:      workerpool.NewPrometheusMetrics(reg, cfg.Metrics.Namespace),
		LockOSThread: cfg.Pool.LockOSThread,
		PinWorkers:   cfg.Pool.PinWorkers,
		OnWorkerPanic: func(e *workerpool.WorkerPanicError) {
			logger.Error("worker lost to a panicking job", lg.Int("worker", e.WorkerID), lg.Any("panic", e.Value))
		},
	})
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	// Close waits for every accepted connection to be answered.
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("pool shut down with errors", lg.Any("error", cerr))
			err = multierr.Append(err, cerr)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)
	defer stopMetrics()

	srv := server.New(cfg.Server, pool)
	// in-flight requests are abandoned on a signal only, not when the
	// accept loop reaches MaxConns
	srv.ConnContext = ctx
	g.Go(func() error {
		defer stopMetrics()
		return srv.ListenAndServe(gctx)
	})

	if cfg.Metrics.Addr != "" {
		gin.SetMode(gin.ReleaseMode)
		g.Go(func() error {
			return server.ServeMetrics(metricsCtx, cfg.Metrics, reg)
		})
	}

	return g.Wait()
}
