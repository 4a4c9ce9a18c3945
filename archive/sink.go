package archive

import (
	"chat-core/domain/event"
	"context"
	"log/slog"
)

// Sink feeds the archive from the fan-out pipeline. It only cares about
// posted messages; everything else passes through silently.
type Sink struct {
	repository IRepository
	log        *slog.Logger
}

func NewSink(repository IRepository, log *slog.Logger) Sink {
	return Sink{repository: repository, log: log}
}

func (s Sink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessagePosted:
		return s.repository.Store(FromMessage(evt.Message))
	default:
		return nil
	}
}
