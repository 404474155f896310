package failover

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tickethub/rpc-failover/internal/circuitbreaker"
	"github.com/tickethub/rpc-failover/internal/endpoint"
	"github.com/tickethub/rpc-failover/internal/healthcheck"
	"github.com/tickethub/rpc-failover/internal/metrics"
	"github.com/tickethub/rpc-failover/internal/rpc"
)

const (
	DefaultHealthCheckInterval    = 30 * time.Second
	DefaultMaxConsecutiveFailures = 3
	DefaultBreakerThreshold       = 5
	DefaultBreakerResetTimeout    = 30 * time.Second
)

// Config captures the immutable construction parameters of a Manager.
type Config struct {
	Endpoints              []string
	HealthCheckInterval    time.Duration
	MaxConsecutiveFailures int
	BreakerThreshold       int
	BreakerResetTimeout    time.Duration
	Connection             rpc.Config
}

// Operation is a caller-supplied action executed against a connection
// to one endpoint. The manager retries it across endpoints on failure.
type Operation func(ctx context.Context, conn rpc.Connection) (any, error)

// Manager keeps an ordered pool of RPC endpoints usable despite
// individual endpoint flakiness. Routing is sticky: the endpoint that
// served the last successful call is tried first on the next one.
type Manager struct {
	endpoints []*endpoint.Endpoint
	connect   rpc.Factory
	connCfg   rpc.Config
	logger    *slog.Logger
	events    chan<- metrics.MetricEvent

	mutex   sync.Mutex
	current int

	cancel   context.CancelFunc
	stopOnce sync.Once
}

// EndpointStatus is one row of the Status snapshot, in configuration
// order. Exactly one row has Current set.
type EndpointStatus struct {
	URL                 string `json:"url"`
	Healthy             bool   `json:"healthy"`
	Current             bool   `json:"current"`
	ConsecutiveFailures int    `json:"consecutive_failures"`
	CircuitBreakerState string `json:"circuit_breaker_state"`
}

// New builds the endpoint pool and immediately starts the health-check
// loop. The loop runs until Stop is called; the manager is not
// restartable after that.
func New(cfg Config, connect rpc.Factory, logger *slog.Logger, events chan<- metrics.MetricEvent) (*Manager, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.MaxConsecutiveFailures <= 0 {
		cfg.MaxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = DefaultBreakerThreshold
	}
	if cfg.BreakerResetTimeout <= 0 {
		cfg.BreakerResetTimeout = DefaultBreakerResetTimeout
	}

	m := &Manager{
		endpoints: make([]*endpoint.Endpoint, 0, len(cfg.Endpoints)),
		connect:   connect,
		connCfg:   cfg.Connection,
		logger:    logger,
		events:    events,
	}

	for _, url := range cfg.Endpoints {
		breaker := circuitbreaker.NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerResetTimeout)
		m.endpoints = append(m.endpoints, endpoint.New(url, cfg.MaxConsecutiveFailures, breaker, logger, events))
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go healthcheck.Watch(ctx, m.endpoints, cfg.HealthCheckInterval, connect, cfg.Connection, logger)

	logger.Info("RPC failover manager initialized",
		slog.Any("endpoints", cfg.Endpoints),
		slog.Duration("health_check_interval", cfg.HealthCheckInterval),
		slog.Int("max_consecutive_failures", cfg.MaxConsecutiveFailures))

	return m, nil
}

// ExecuteWithFailover runs op against the current endpoint and, on
// failure, against each remaining endpoint exactly once in rotation
// order. Unhealthy endpoints are still attempted: health affects
// observability, not the candidate set, and their OPEN breaker makes
// the wasted attempt nearly free. The label identifies the caller in
// logs.
func (m *Manager) ExecuteWithFailover(ctx context.Context, op Operation, label string) (any, error) {
	start := m.currentIndex()
	n := len(m.endpoints)

	var lastErr error
	tried := make([]string, 0, n)

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		e := m.endpoints[idx]
		tried = append(tried, e.URL())

		var result any
		err := e.Breaker().Execute(func() error {
			var opErr error
			result, opErr = op(ctx, m.connect(e.URL(), m.connCfg))
			return opErr
		})
		if err == nil {
			e.RecordSuccess()
			m.setCurrent(idx)
			m.emit(metrics.MetricEvent{
				Type:      metrics.EventAttemptSucceeded,
				Timestamp: time.Now(),
				Endpoint:  e.URL(),
			})
			return result, nil
		}

		lastErr = err
		m.emit(metrics.MetricEvent{
			Type:      metrics.EventAttemptFailed,
			Timestamp: time.Now(),
			Endpoint:  e.URL(),
			ErrorType: classify(err),
		})
		m.logger.Warn("RPC operation failed, trying next endpoint",
			slog.String("endpoint", e.URL()),
			slog.String("context", label),
			slog.String("error", err.Error()))
		e.RecordFailure()
	}

	m.logger.Error("All RPC endpoints failed",
		slog.String("context", label),
		slog.Any("endpoints", tried))
	m.emit(metrics.MetricEvent{
		Type:      metrics.EventPoolExhausted,
		Timestamp: time.Now(),
	})

	return nil, &ExhaustedError{Tried: tried, LastErr: lastErr}
}

// Connection returns a fresh connection to the current endpoint,
// bypassing the breaker. Intended for callers that handle retries
// themselves.
func (m *Manager) Connection() rpc.Connection {
	return m.connect(m.endpoints[m.currentIndex()].URL(), m.connCfg)
}

// Status reports every endpoint in configuration order.
func (m *Manager) Status() []EndpointStatus {
	current := m.currentIndex()

	statuses := make([]EndpointStatus, 0, len(m.endpoints))
	for i, e := range m.endpoints {
		statuses = append(statuses, EndpointStatus{
			URL:                 e.URL(),
			Healthy:             e.IsHealthy(),
			Current:             i == current,
			ConsecutiveFailures: e.ConsecutiveFailures(),
			CircuitBreakerState: e.Breaker().State().String(),
		})
	}

	return statuses
}

// HealthyCount returns how many endpoints are currently healthy.
func (m *Manager) HealthyCount() int {
	count := 0
	for _, e := range m.endpoints {
		if e.IsHealthy() {
			count++
		}
	}

	return count
}

// Stop cancels the health-check loop. Safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.logger.Info("RPC failover manager stopped")
	})
}

func (m *Manager) currentIndex() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.current
}

func (m *Manager) setCurrent(idx int) {
	m.mutex.Lock()
	m.current = idx
	m.mutex.Unlock()
}

func (m *Manager) emit(event metrics.MetricEvent) {
	if m.events == nil {
		return
	}

	select {
	case m.events <- event:
	default:
		// Collector backlogged, drop rather than block
	}
}

func classify(err error) string {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return rpc.KindCircuitOpen
	}

	return rpc.Classify(err)
}
