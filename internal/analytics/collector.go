package analytics

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/resilience"
)

// Collector buffers comparison events and publishes them to Kafka off the
// request path. A circuit breaker around the producer sheds events instead of
// stalling the pipeline when the broker is down.
type Collector struct {
	producer *kafka.Producer
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	eventCh  chan any
	logger   *slog.Logger
	done     chan struct{}
}

func NewCollector(producer *kafka.Producer, bufferSize int, m *metrics.Metrics) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		producer: producer,
		breaker:  resilience.NewCircuitBreaker("comparison-events", resilience.CircuitBreakerConfig{}),
		metrics:  m,
		eventCh:  make(chan any, bufferSize),
		logger:   slog.Default().With("component", "analytics-collector"),
		done:     make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// Track enqueues an event without blocking. Events are dropped when the
// buffer is full; comparisons must never wait on analytics.
func (c *Collector) Track(event any) {
	select {
	case c.eventCh <- event:
	default:
		c.countPublish("dropped")
		c.logger.Warn("comparison event dropped (buffer full)")
	}
}

func (c *Collector) Close() {
	close(c.eventCh)
	<-c.done
}

func (c *Collector) publish(ctx context.Context, event any) {
	err := c.breaker.Execute(func() error {
		return c.producer.Publish(ctx, kafka.Event{
			Key:   "comparisons",
			Value: event,
		})
	})
	switch {
	case err == nil:
		c.countPublish("ok")
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.countPublish("dropped")
		c.logger.Warn("comparison event dropped (publisher circuit open)")
	default:
		c.countPublish("error")
		c.logger.Error("failed to publish comparison event", "error", err)
	}
}

// drainRemaining flushes whatever is still buffered as a single batch so
// shutdown does not lose tracked events.
func (c *Collector) drainRemaining() {
	var remaining []kafka.Event
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				c.flush(remaining)
				return
			}
			remaining = append(remaining, kafka.Event{Key: "comparisons", Value: event})
		default:
			c.flush(remaining)
			return
		}
	}
}

func (c *Collector) flush(events []kafka.Event) {
	if len(events) == 0 {
		return
	}
	if err := c.producer.PublishBatch(context.Background(), events); err != nil {
		c.countPublish("error")
		c.logger.Error("failed to flush remaining events", "count", len(events), "error", err)
		return
	}
	for range events {
		c.countPublish("ok")
	}
	c.logger.Info("flushed remaining comparison events", "count", len(events))
}

func (c *Collector) countPublish(status string) {
	if c.metrics != nil {
		c.metrics.EventsPublishedTotal.WithLabelValues(status).Inc()
	}
}
