// Package rpc provides the JSON-RPC connection layer used by the
// failover manager: a connection factory, an HTTP client bound to a
// single endpoint, and a closed error classification used for metrics.
package rpc
