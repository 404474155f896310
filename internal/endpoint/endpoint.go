package endpoint

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tickethub/rpc-failover/internal/circuitbreaker"
	"github.com/tickethub/rpc-failover/internal/metrics"
)

// Endpoint pairs an RPC provider URL with its circuit breaker and the
// failure bookkeeping that drives healthy/unhealthy classification.
// The consecutive-failure counter is distinct from the breaker's own
// failure count: the breaker bounds rapid retries within a short
// window, the counter drives the coarser routing classification.
type Endpoint struct {
	url                    string
	breaker                *circuitbreaker.CircuitBreaker
	maxConsecutiveFailures int
	logger                 *slog.Logger
	events                 chan<- metrics.MetricEvent

	mutex               sync.Mutex
	consecutiveFailures int
	isHealthy           bool
}

// New creates an endpoint record. Endpoints start healthy.
func New(url string, maxConsecutiveFailures int, breaker *circuitbreaker.CircuitBreaker, logger *slog.Logger, events chan<- metrics.MetricEvent) *Endpoint {
	return &Endpoint{
		url:                    url,
		breaker:                breaker,
		maxConsecutiveFailures: maxConsecutiveFailures,
		logger:                 logger,
		events:                 events,
		isHealthy:              true,
	}
}

func (e *Endpoint) URL() string {
	return e.url
}

func (e *Endpoint) Breaker() *circuitbreaker.CircuitBreaker {
	return e.breaker
}

func (e *Endpoint) IsHealthy() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.isHealthy
}

func (e *Endpoint) ConsecutiveFailures() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.consecutiveFailures
}

// RecordFailure increments the consecutive-failure counter and flips
// the endpoint unhealthy once the threshold is reached.
func (e *Endpoint) RecordFailure() {
	e.mutex.Lock()
	e.consecutiveFailures++
	turnedUnhealthy := e.isHealthy && e.consecutiveFailures >= e.maxConsecutiveFailures
	if turnedUnhealthy {
		e.isHealthy = false
	}
	failures := e.consecutiveFailures
	e.mutex.Unlock()

	if turnedUnhealthy {
		e.logger.Warn("RPC endpoint marked unhealthy",
			slog.String("endpoint", e.url),
			slog.Int("consecutive_failures", failures))
		e.emit(metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Endpoint:  e.url,
			Healthy:   false,
		})
	}
}

// RecordRecovery is the probe-driven recovery path: it resets the
// failure counter, marks the endpoint healthy and closes its breaker.
// The recovered event fires only on an actual transition.
func (e *Endpoint) RecordRecovery() {
	e.mutex.Lock()
	recovered := !e.isHealthy
	e.consecutiveFailures = 0
	e.isHealthy = true
	e.mutex.Unlock()

	e.breaker.Reset()

	if recovered {
		e.logger.Info("RPC endpoint recovered",
			slog.String("endpoint", e.url))
		e.emit(metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Endpoint:  e.url,
			Healthy:   true,
		})
	}
}

// RecordSuccess is the caller-path success: it clears the failure
// counter but never promotes an unhealthy endpoint back to healthy.
// Only the health prober does that, so one lucky call cannot mask a
// flaky link.
func (e *Endpoint) RecordSuccess() {
	e.mutex.Lock()
	e.consecutiveFailures = 0
	e.mutex.Unlock()
}

func (e *Endpoint) emit(event metrics.MetricEvent) {
	if e.events == nil {
		return
	}

	select {
	case e.events <- event:
	default:
		// Collector backlogged, drop rather than block
	}
}
