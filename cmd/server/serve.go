package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plangenie/internal/catalog"
	"plangenie/internal/handlers/api"
	"plangenie/internal/jobs"
	"plangenie/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	started := time.Now()
	cfg, tuning, err := loadConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c, err := wire(ctx, cfg, tuning, logger, reg)
	if err != nil {
		return err
	}
	defer c.Close()

	srv := server.New(cfg, logger.Named("http"))
	srv.RegisterRoutes(server.Handlers{
		Query:    api.NewQueryHandler(c.pipeline, logger.Named("api")),
		Health:   api.NewHealthHandler(c.catalog, started),
		Plans:    api.NewPlansHandler(c.catalog),
		Probe:    api.NewProbeHandler(c.catalog),
		Gatherer: reg,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		return srv.Shutdown()
	})

	var sweepers []jobs.Sweeper
	if c.memory != nil {
		sweepers = append(sweepers, c.memory)
	}
	refresher := jobs.NewCatalogRefresher(c.catalog, cfg.CatalogRefreshInterval, logger.Named("refresher"), sweepers...)
	g.Go(func() error {
		refresher.Start(gctx)
		return nil
	})

	if fs, ok := c.source.(*catalog.FileSource); ok {
		watcher, err := jobs.NewCatalogWatcher(fs.Path(), c.catalog, logger.Named("watcher"))
		if err != nil {
			logger.Warn("catalog file watching disabled", zap.Error(err))
		} else {
			g.Go(func() error {
				watcher.Start(gctx)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
