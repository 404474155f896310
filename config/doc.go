// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the daemon configuration structure
// including server settings, RPC endpoint URLs, failover thresholds, circuit
// breaker tuning, connection options and response caching.
package config
