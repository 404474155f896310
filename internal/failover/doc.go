// Package failover implements the RPC failover manager: an ordered
// pool of redundant blockchain node providers with per-endpoint
// circuit breakers, consecutive-failure tracking, sticky routing and
// an independent background health-check loop.
package failover
