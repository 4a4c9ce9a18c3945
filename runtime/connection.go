package runtime

import (
	cerrors "chat-core/errors"

	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Connection is the server-side handle of one live client. Inbound work
// arrives through orchestrator calls; outbound events are queued on a
// bounded outbox channel that the client task drains. The broadcaster
// writes into the outbox instead of invoking callbacks, so a slow client
// can only ever lose its own events.
type Connection struct {
	id     domain.ConnectionID
	log    *slog.Logger
	outbox chan event.DomainEvent
}

func NewConnection(log *slog.Logger, bufferSize int) *Connection {
	return &Connection{
		id:     domain.ConnectionID(uuid.NewString()),
		log:    log,
		outbox: make(chan event.DomainEvent, bufferSize),
	}
}

func (c *Connection) ID() domain.ConnectionID { return c.id }

// Events exposes the outbox for the client task to range over.
func (c *Connection) Events() <-chan event.DomainEvent { return c.outbox }

// Consume implements contract.EventSink. The fast path is a non-blocking
// enqueue; when the outbox is full it waits only as long as the delivery
// context allows, then reports the failure so the broadcaster can log and
// move on. A full outbox never stalls fan-out to the other members.
func (c *Connection) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case c.outbox <- e:
		return nil
	default:
	}

	select {
	case c.outbox <- e:
		return nil
	case <-ctx.Done():
		return cerrors.ErrOutboxFull
	}
}
