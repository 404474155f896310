package main

import (
	"net/http"

	"github.com/tickethub/rpc-failover/internal/failover"
	"github.com/tickethub/rpc-failover/internal/handler"
	"github.com/tickethub/rpc-failover/internal/metrics"
)

func setupRouter(proxy *handler.RPCProxyHandler, manager *failover.Manager, metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", proxy.ServeHTTP)
	mux.HandleFunc("/status", handler.StatusHandler(manager))
	mux.HandleFunc("/healthz", handler.HealthzHandler(manager))
	mux.HandleFunc("/metrics", metricsCollector.Handler())

	return mux
}
