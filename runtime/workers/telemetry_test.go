package workers

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTelemetryWorker_CountsByKind(t *testing.T) {
	req := require.New(t)
	telemetry := make(chan event.DomainEvent, 8)
	counter := NewCounter()
	worker := NewTelemetryWorker(slog.Default(), time.Minute, telemetry, counter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	telemetry <- event.MessagePosted{Message: domain.Message{SenderID: 1, RecipientID: 2}}
	telemetry <- event.MessagePosted{Message: domain.Message{SenderID: 2, RecipientID: 1}}
	telemetry <- event.TypingChanged{ConversationID: "1-2", UserID: 1, Typing: true}

	req.Eventually(func() bool {
		counts := counter.Snapshot()
		return counts["message_posted"] == 2 && counts["typing_changed"] == 1
	}, time.Second, 10*time.Millisecond)
}
