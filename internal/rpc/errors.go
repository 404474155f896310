package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds used as metric labels. The set is closed; anything not
// recognized falls into KindUnknown.
const (
	KindNetwork     = "network"
	KindTimeout     = "timeout"
	KindHTTPStatus  = "http_status"
	KindRPCError    = "rpc_error"
	KindCircuitOpen = "circuit_open"
	KindUnknown     = "unknown"
)

// HTTPStatusError reports a non-200 response from an endpoint.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// RPCError is the error object of a JSON-RPC 2.0 response.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Classify maps an error to its metric label.
func Classify(err error) string {
	if err == nil {
		return KindUnknown
	}

	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return KindRPCError
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return KindHTTPStatus
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	return KindUnknown
}
