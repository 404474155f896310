// Package logger constructs the process-wide slog logger: text output
// in development, JSON in production, with optional size-based file
// rotation.
package logger
