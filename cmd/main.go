package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/tickethub/rpc-failover/config"
	"github.com/tickethub/rpc-failover/internal/failover"
	"github.com/tickethub/rpc-failover/internal/handler"
	"github.com/tickethub/rpc-failover/internal/httpserver"
	"github.com/tickethub/rpc-failover/internal/metrics"
	"github.com/tickethub/rpc-failover/internal/rpc"
	"github.com/tickethub/rpc-failover/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		AddSource:   true,
		Environment: cfg.Server.Environment,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(256, log)
	collector.Start(ctx)

	manager, err := initializeManager(cfg, log, collector.EventChannel())
	if err != nil {
		log.Error("Failed to initialize failover manager", slog.Any("err", err))
		os.Exit(1)
	}
	defer manager.Stop()

	cacheCfg, err := buildCacheConfig(cfg)
	if err != nil {
		log.Error("Failed to parse cache config", slog.Any("err", err))
		os.Exit(1)
	}

	proxy := handler.NewRPCProxyHandler(log, manager, cacheCfg)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(proxy, manager, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("RPC failover proxy listening", slog.String("address", cfg.Server.Address))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		manager.Stop()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting proxy server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func initializeManager(cfg *config.Config, log *slog.Logger, events chan<- metrics.MetricEvent) (*failover.Manager, error) {
	healthCheckInterval, err := time.ParseDuration(cfg.HealthCheck.Interval)
	if err != nil {
		return nil, err
	}

	resetTimeout, err := time.ParseDuration(cfg.Breaker.ResetTimeout)
	if err != nil {
		return nil, err
	}

	connTimeout, err := time.ParseDuration(cfg.Connection.Timeout)
	if err != nil {
		return nil, err
	}

	return failover.New(failover.Config{
		Endpoints:              cfg.Endpoints,
		HealthCheckInterval:    healthCheckInterval,
		MaxConsecutiveFailures: cfg.Failover.MaxConsecutiveFailures,
		BreakerThreshold:       cfg.Breaker.FailureThreshold,
		BreakerResetTimeout:    resetTimeout,
		Connection: rpc.Config{
			Timeout:    connTimeout,
			Commitment: cfg.Connection.Commitment,
		},
	}, rpc.NewClient, log, events)
}

func buildCacheConfig(cfg *config.Config) (handler.CacheConfig, error) {
	if !cfg.Cache.Enabled {
		return handler.CacheConfig{}, nil
	}

	ttl, err := time.ParseDuration(cfg.Cache.TTL)
	if err != nil {
		return handler.CacheConfig{}, err
	}

	return handler.CacheConfig{
		Enabled: true,
		Size:    cfg.Cache.Size,
		TTL:     ttl,
		Methods: cfg.Cache.Methods,
	}, nil
}
