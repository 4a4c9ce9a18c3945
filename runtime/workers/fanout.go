package workers

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*FanoutWorker)(nil)

// FanoutWorker is the broadcaster: it drains the event channel and
// delivers each event to every member of its conversation except the
// origin connection, plus the permanent sinks (archive, projections).
//
// Delivery is best-effort and fire-and-forget per sink: a member that is
// slow, full, or gone mid-broadcast is logged and skipped, it never
// delays the other members and never surfaces to the sender. Several
// FanoutWorkers may share one event channel to parallelize conversations.
type FanoutWorker struct {
	log         *slog.Logger
	registry    contract.IRegistry
	events      chan event.DomainEvent
	telemetry   chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewFanoutWorker(log *slog.Logger, registry contract.IRegistry,
	events, telemetry chan event.DomainEvent,
	sinks []contract.EventSink, sinkTimeout time.Duration) *FanoutWorker {
	return &FanoutWorker{
		log:         log,
		registry:    registry,
		events:      events,
		telemetry:   telemetry,
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
	}
}

func (w *FanoutWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
			if w.telemetry != nil {
				select {
				case w.telemetry <- evt:
				default:
					w.log.Debug("Telemetry event lost")
				}
			}
		}
	}
}

// Fanout delivers one event. Membership is read at fan-out time: an event
// racing a leave may or may not reach the leaving connection, which is
// accepted best-effort semantics, not a correctness violation.
func (w *FanoutWorker) Fanout(ctx context.Context, evt event.DomainEvent) {
	var origin domain.ConnectionID
	if originated, ok := evt.(event.Originated); ok {
		origin = originated.OriginConnection()
	}

	for _, member := range w.registry.Members(evt.Conversation()) {
		if member.Connection == origin {
			continue
		}
		go w.deliver(ctx, member.Sink, evt, string(member.Connection))
	}
	for _, sink := range w.sinks {
		go w.deliver(ctx, sink, evt, contract.GetSinkName(sink))
	}
}

func (w *FanoutWorker) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent, target string) {
	deliveryCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	if err := sink.Consume(deliveryCtx, evt); err != nil {
		w.log.Warn("Delivery failed, skipping target", "target", target, "error", err)
	}
}
