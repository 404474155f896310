package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mutex        sync.RWMutex
	attempts     map[string]int64
	successes    map[string]int64
	failures     map[string]int64
	errorTypes   map[string]int64
	healthStatus map[string]bool
	exhausted    int64
	startTime    time.Time
}

type Snapshot struct {
	TotalAttempts  int64                      `json:"total_attempts"`
	ExhaustedCalls int64                      `json:"exhausted_calls"`
	Uptime         time.Duration              `json:"uptime"`
	ErrorTypes     map[string]int64           `json:"error_types"`
	Endpoints      map[string]EndpointMetrics `json:"endpoints"`
}

type EndpointMetrics struct {
	Attempts  int64 `json:"attempts"`
	Successes int64 `json:"successes"`
	Failures  int64 `json:"failures"`
	Healthy   bool  `json:"healthy"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		attempts:     make(map[string]int64),
		successes:    make(map[string]int64),
		failures:     make(map[string]int64),
		errorTypes:   make(map[string]int64),
		healthStatus: make(map[string]bool),
		startTime:    time.Now(),
	}
}

func (m *Metrics) RecordSuccess(endpoint string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.attempts[endpoint]++
	m.successes[endpoint]++
}

func (m *Metrics) RecordFailure(endpoint, errorType string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.attempts[endpoint]++
	m.failures[endpoint]++
	m.errorTypes[errorType]++
}

func (m *Metrics) RecordExhausted() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.exhausted++
}

func (m *Metrics) UpdateHealthStatus(endpoint string, healthy bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.healthStatus[endpoint] = healthy
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		ExhaustedCalls: m.exhausted,
		Uptime:         time.Since(m.startTime),
		ErrorTypes:     make(map[string]int64, len(m.errorTypes)),
		Endpoints:      make(map[string]EndpointMetrics),
	}

	for errorType, count := range m.errorTypes {
		snap.ErrorTypes[errorType] = count
	}

	// Collect all endpoint URLs seen on any path
	allEndpoints := make(map[string]bool)
	for endpoint := range m.attempts {
		allEndpoints[endpoint] = true
	}
	for endpoint := range m.healthStatus {
		allEndpoints[endpoint] = true
	}

	for endpoint := range allEndpoints {
		snap.TotalAttempts += m.attempts[endpoint]

		snap.Endpoints[endpoint] = EndpointMetrics{
			Attempts:  m.attempts[endpoint],
			Successes: m.successes[endpoint],
			Failures:  m.failures[endpoint],
			Healthy:   m.healthStatus[endpoint],
		}
	}

	return snap
}
