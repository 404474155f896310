package failover

import (
	"errors"
	"fmt"
)

// ErrNoEndpoints is returned by New when the endpoint list is empty.
// It is a configuration error and is never retried.
var ErrNoEndpoints = errors.New("at least one RPC endpoint must be configured")

// ExhaustedError is returned once every candidate endpoint in a call
// has failed. It wraps the last underlying error.
type ExhaustedError struct {
	Tried   []string
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("All RPC endpoints failed. Last error: %s", e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}
