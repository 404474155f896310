// Package healthcheck implements the periodic liveness probe loop for
// RPC endpoints. Probes run independently of caller traffic and are
// the sole recovery path for endpoints marked unhealthy.
package healthcheck
