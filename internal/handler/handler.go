package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tickethub/rpc-failover/internal/failover"
	"github.com/tickethub/rpc-failover/internal/rpc"
)

const maxRequestBytes = 1 << 20

// CacheConfig controls the response cache for read-only RPC methods.
type CacheConfig struct {
	Enabled bool
	Size    int
	TTL     time.Duration
	Methods []string
}

// RPCProxyHandler forwards JSON-RPC requests through the failover
// manager. Responses for configured read-only methods are cached for a
// short window to spare the endpoint pool.
type RPCProxyHandler struct {
	logger       *slog.Logger
	manager      *failover.Manager
	cache        *expirable.LRU[string, []byte]
	cacheMethods map[string]bool
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
}

func NewRPCProxyHandler(logger *slog.Logger, manager *failover.Manager, cacheCfg CacheConfig) *RPCProxyHandler {
	h := &RPCProxyHandler{
		logger:       logger,
		manager:      manager,
		cacheMethods: make(map[string]bool, len(cacheCfg.Methods)),
	}

	if cacheCfg.Enabled {
		h.cache = expirable.NewLRU[string, []byte](cacheCfg.Size, nil, cacheCfg.TTL)
		for _, method := range cacheCfg.Methods {
			h.cacheMethods[method] = true
		}
	}

	return h
}

func (h *RPCProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.NewString()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Method == "" {
		http.Error(w, "malformed JSON-RPC request", http.StatusBadRequest)
		return
	}

	h.logger.Info("Received RPC request",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("from", r.RemoteAddr))

	if cached, ok := h.lookup(req.Method, body); ok {
		h.logger.Debug("Cache hit",
			slog.String("request_id", requestID),
			slog.String("method", req.Method))
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := h.manager.ExecuteWithFailover(r.Context(), func(ctx context.Context, conn rpc.Connection) (any, error) {
		return conn.Do(ctx, body)
	}, "proxy")
	if err != nil {
		h.logger.Error("RPC request failed",
			slog.String("request_id", requestID),
			slog.String("method", req.Method),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorEnvelope(req.ID, err))
		return
	}

	response := result.([]byte)
	h.store(req.Method, body, response)
	writeJSON(w, http.StatusOK, response)
}

// StatusHandler reports the manager's per-endpoint status.
func StatusHandler(manager *failover.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(manager.Status()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// HealthzHandler returns 200 while at least one endpoint is healthy.
func HealthzHandler(manager *failover.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if manager.HealthyCount() == 0 {
			http.Error(w, "no healthy RPC endpoints", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

func (h *RPCProxyHandler) lookup(method string, body []byte) ([]byte, bool) {
	if h.cache == nil || !h.cacheMethods[method] {
		return nil, false
	}

	return h.cache.Get(string(body))
}

func (h *RPCProxyHandler) store(method string, body, response []byte) {
	if h.cache == nil || !h.cacheMethods[method] {
		return
	}

	h.cache.Add(string(body), response)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func errorEnvelope(id json.RawMessage, err error) []byte {
	if id == nil {
		id = json.RawMessage("null")
	}

	return []byte(fmt.Sprintf(`{"jsonrpc":"2.0","id":%s,"error":{"code":-32000,"message":%q}}`, id, err.Error()))
}
