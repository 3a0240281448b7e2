package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"arbt/internal/evidence/registry"
	"arbt/internal/evidence/registry/handler"
	"arbt/internal/platform/config"
	"arbt/internal/platform/httpserver"
	"arbt/internal/platform/logger"
	httptransport "arbt/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Harvesting logic lives in internal/evidence/registry.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("ARBT_CONFIG"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(os.Stdout, logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	svc, err := registry.NewService(cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	h := handler.New(svc.Providers(), log, svc.Metrics())
	router := httptransport.NewRouter(log, prometheus.DefaultGatherer, h)
	srv := httpserver.New(cfg.Server.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting arbt harvester", "addr", cfg.Server.Addr, "brreg", cfg.Registry.BrregBaseURL)
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "reason", context.Cause(gctx))
		return nil
	})
	return g.Wait()
}
