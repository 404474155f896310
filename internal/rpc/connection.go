package rpc

import (
	"context"
	"time"
)

// Config carries per-connection options. It is captured once by the
// failover manager and passed through to every connection it creates.
type Config struct {
	Timeout    time.Duration
	Commitment string
}

// Connection is a client bound to a single RPC endpoint.
type Connection interface {
	URL() string

	// Do posts a raw JSON-RPC payload and returns the raw response body.
	Do(ctx context.Context, payload []byte) ([]byte, error)

	// Call performs a single JSON-RPC method call, decoding the result
	// into result when it is non-nil.
	Call(ctx context.Context, method string, params any, result any) error

	// Slot is the cheap liveness call used by health probes.
	Slot(ctx context.Context) (uint64, error)
}

// Factory constructs a connection for an endpoint URL. The failover
// manager and health checker create a fresh connection per attempt.
type Factory func(url string, cfg Config) Connection
