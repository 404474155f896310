// Package circuitbreaker implements the circuit breaker pattern used to
// protect individual RPC endpoints from repeated wasted calls.
//
// Each breaker wraps exactly one endpoint and has three states:
//
//   - CLOSED: normal operation, calls pass through
//   - OPEN: endpoint failing, calls rejected with ErrOpen
//   - HALF_OPEN: one trial call allowed after the reset timeout
//
// Usage:
//
//	cb := circuitbreaker.NewCircuitBreaker(5, 30*time.Second)
//	err := cb.Execute(func() error {
//	    return conn.Call(ctx, "getSlot", nil, &slot)
//	})
//	if errors.Is(err, circuitbreaker.ErrOpen) {
//	    // rejected without touching the endpoint
//	}
package circuitbreaker
