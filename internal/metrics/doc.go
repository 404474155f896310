// Package metrics tracks failover activity: per-endpoint attempt
// outcomes, error-type counters, exhausted calls and health status.
// Events are fed through a buffered channel into a Collector goroutine
// and exposed as a JSON snapshot over HTTP.
package metrics
