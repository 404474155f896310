package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventAttemptSucceeded EventType = "attempt_succeeded"
	EventAttemptFailed    EventType = "attempt_failed"
	EventHealthChanged    EventType = "health_changed"
	EventPoolExhausted    EventType = "pool_exhausted"
)

type MetricEvent struct {
	Type      EventType
	Timestamp time.Time
	Endpoint  string
	ErrorType string
	Healthy   bool
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventAttemptSucceeded:
		c.metrics.RecordSuccess(event.Endpoint)

	case EventAttemptFailed:
		c.metrics.RecordFailure(event.Endpoint, event.ErrorType)

	case EventHealthChanged:
		c.metrics.UpdateHealthStatus(event.Endpoint, event.Healthy)

	case EventPoolExhausted:
		c.metrics.RecordExhausted()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
