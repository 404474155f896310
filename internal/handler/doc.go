// Package handler exposes the HTTP surface of the failover daemon: a
// JSON-RPC proxy that routes requests through the failover manager,
// plus status and liveness endpoints.
package handler
