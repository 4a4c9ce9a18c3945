package workers

import (
	"chat-core/domain/event"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Counter tallies pipeline events by kind. Observability only; dropping a
// telemetry event loses a count, never a message.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

func (c *Counter) Increment(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[kind]++
}

func (c *Counter) Snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// TelemetryWorker drains the telemetry copy of the event stream and keeps
// running totals, logged at the metric interval.
type TelemetryWorker struct {
	log            *slog.Logger
	metricInterval time.Duration
	telemetry      chan event.DomainEvent
	counter        *Counter
}

func NewTelemetryWorker(log *slog.Logger, metricInterval time.Duration,
	telemetry chan event.DomainEvent, counter *Counter) *TelemetryWorker {
	return &TelemetryWorker{
		log:            log,
		metricInterval: metricInterval,
		telemetry:      telemetry,
		counter:        counter,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.telemetry:
			if !ok {
				return nil
			}
			w.counter.Increment(kindOf(evt))
		case <-ticker.C:
			w.log.Debug(fmt.Sprintf("Pipeline counters: %v", w.counter.Snapshot()))
		}
	}
}

func kindOf(e event.DomainEvent) string {
	switch e.(type) {
	case event.MessagePosted:
		return "message_posted"
	case event.StatusAdvanced:
		return "status_advanced"
	case event.TypingChanged:
		return "typing_changed"
	case event.ParticipantJoined:
		return "participant_joined"
	case event.ParticipantLeft:
		return "participant_left"
	default:
		return "unknown"
	}
}
