//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// GetSinkName mirrors GetWorkerName for sinks, for delivery logging.
func GetSinkName(s EventSink) string {
	if s == nil {
		return "NilSink"
	}
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes routed events. Connections are sinks (their outbox),
// and so are the permanent consumers wired at startup (archive, telemetry).
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Member pairs a connection id with its sink so the broadcaster can
// exclude the event origin during fan-out.
type Member struct {
	Connection domain.ConnectionID
	Sink       EventSink
}

type IRegistry interface {
	Join(conn domain.ConnectionID, sink EventSink, conversationID domain.ConversationID) int
	Leave(conn domain.ConnectionID, conversationID domain.ConversationID) int
	Disconnect(conn domain.ConnectionID)
	Members(conversationID domain.ConversationID) []Member
}
