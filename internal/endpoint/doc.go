// Package endpoint holds the per-provider record used by the failover
// manager: URL, owned circuit breaker, consecutive-failure counter and
// healthy flag, plus the mutators that keep them consistent.
package endpoint
