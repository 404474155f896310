package healthcheck

import (
	"context"
	"log/slog"
	"time"

	"github.com/tickethub/rpc-failover/internal/endpoint"
	"github.com/tickethub/rpc-failover/internal/rpc"
)

// Watch probes every configured endpoint on a fixed interval until ctx
// is cancelled. Healthy endpoints are re-probed too, to catch silent
// regressions. A successful probe is the only path that promotes an
// unhealthy endpoint back to healthy; a failed probe is logged at
// debug severity and never touches the caller-path failure counter,
// so probe noise cannot flip an endpoint unhealthy on its own.
func Watch(
	ctx context.Context,
	endpoints []*endpoint.Endpoint,
	interval time.Duration,
	connect rpc.Factory,
	connCfg rpc.Config,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Health checks stopped")
			return

		case <-ticker.C:
			for _, e := range endpoints {
				probe(ctx, e, connect, connCfg, logger)
			}
		}
	}
}

func probe(ctx context.Context, e *endpoint.Endpoint, connect rpc.Factory, connCfg rpc.Config, logger *slog.Logger) {
	conn := connect(e.URL(), connCfg)

	slot, err := conn.Slot(ctx)
	if err != nil {
		logger.Debug("Health probe failed",
			slog.String("endpoint", e.URL()),
			slog.String("error", err.Error()))
		return
	}

	e.RecordRecovery()

	logger.Debug("Health probe succeeded",
		slog.String("endpoint", e.URL()),
		slog.Uint64("slot", slot))
}
