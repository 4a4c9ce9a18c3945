package runtime

import (
	"chat-core/archive"
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/messagelog"
	"chat-core/moderation"
	"chat-core/runtime/workers"
	"chat-core/search"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// OrchestratorConfig carries the runtime tunables. All of them come from
// the environment; see internal.Config.
type OrchestratorConfig struct {
	NumberOfWorkers      int
	BufferSize           int
	ConnectionBufferSize int
	SinkTimeout          time.Duration
	TypingTimeout        time.Duration
	MetricInterval       time.Duration
	HeartbeatInterval    time.Duration
}

// Orchestrator owns the shared state of the messaging core: the presence
// registry, the authoritative message log, the moderation automaton and
// the event pipeline. Connection handlers call into it; it never calls
// back, it only writes events that fan out to connection outboxes.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	cfg        OrchestratorConfig
	registry   *Registry
	messages   *messagelog.Log
	moderator  *moderation.Moderator
	history    archive.IRepository
	supervisor contract.ISupervisor

	events         chan event.DomainEvent
	telemetry      chan event.DomainEvent
	permanentSinks []contract.EventSink
	counter        *workers.Counter
	typing         *typingTracker
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry *Registry, messages *messagelog.Log, moderator *moderation.Moderator,
	history archive.IRepository, cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		log:        log,
		cfg:        cfg,
		registry:   registry,
		messages:   messages,
		moderator:  moderator,
		history:    history,
		supervisor: supervisor,
		events:     make(chan event.DomainEvent, cfg.BufferSize),
		telemetry:  make(chan event.DomainEvent, cfg.BufferSize),
		counter:    workers.NewCounter(),
		typing:     newTypingTracker(cfg.TypingTimeout),
	}

	// Every applied transition, scheduled or external, becomes a
	// StatusAdvanced event so the sender's UI can render its ticks.
	messages.OnStatusChange(func(msg domain.Message, status domain.Status) {
		o.Dispatch(event.StatusAdvanced{Message: msg, Status: status})
	})
	return o
}

// Add registers permanent sinks consulted on every fan-out, on top of the
// archive sink wired by Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Connect creates a fresh connection handle with its own outbox.
func (o *Orchestrator) Connect() *Connection {
	return NewConnection(o.log, o.cfg.ConnectionBufferSize)
}

// Join subscribes a connection to a conversation. Any previous
// subscription of the same connection is released first.
func (o *Orchestrator) Join(conn *Connection, conversationID domain.ConversationID) {
	count := o.registry.Join(conn.ID(), conn, conversationID)
	o.log.Debug(fmt.Sprintf("Connection %s joined %s (%d members)", conn.ID(), conversationID, count))
	o.Dispatch(event.ParticipantJoined{
		Connection:     conn.ID(),
		ConversationID: conversationID,
		Members:        count,
	})
}

func (o *Orchestrator) Leave(conn *Connection, conversationID domain.ConversationID) {
	count := o.registry.Leave(conn.ID(), conversationID)
	o.Dispatch(event.ParticipantLeft{
		Connection:     conn.ID(),
		ConversationID: conversationID,
		Members:        count,
	})
}

// Disconnect tears a connection down: presence is removed synchronously,
// so no broadcast started after this call can target the connection.
func (o *Orchestrator) Disconnect(conn *Connection) {
	o.typing.clear(conn.ID())
	o.registry.Disconnect(conn.ID())
	o.log.Debug(fmt.Sprintf("Connection %s disconnected", conn.ID()))
}

// Send is the submission path: moderate, append to the authoritative log
// (which assigns identity and starts the delivery lifecycle), then hand
// the broadcast to the pipeline. Returns the created message so the
// caller can render it optimistically.
func (o *Orchestrator) Send(conn *Connection, input domain.MessageInput) (domain.Message, error) {
	sanitized, censored := o.moderator.Censor(input.Content)
	if len(censored) > 0 {
		o.log.Warn("Censored words in message", "sender", input.SenderID, "words", len(censored))
	}
	input.Content = sanitized

	msg, err := o.messages.Append(input)
	if err != nil {
		return domain.Message{}, err
	}

	o.Dispatch(event.MessagePosted{
		Origin:  conn.ID(),
		Message: msg,
		Lang:    moderation.DetectLang(msg.Content),
	})
	return msg, nil
}

// Receive reconciles a message delivered from another process against the
// local log. True means the message was new; only then should the caller
// notify anyone.
func (o *Orchestrator) Receive(msg domain.Message) bool {
	return o.messages.Receive(msg)
}

// SetTyping broadcasts typing transitions, debounced per connection. A
// stale "typing" expires on its own after the configured inactivity.
func (o *Orchestrator) SetTyping(conn *Connection, conversationID domain.ConversationID,
	userID domain.ParticipantID, typing bool) {
	if typing {
		started := o.typing.touch(conn.ID(), func() {
			o.SetTyping(conn, conversationID, userID, false)
		})
		if !started {
			return
		}
	} else if !o.typing.clear(conn.ID()) {
		return
	}

	o.Dispatch(event.TypingChanged{
		Origin:         conn.ID(),
		ConversationID: conversationID,
		UserID:         userID,
		Typing:         typing,
	})
}

// Search ranks the requester's messages against a free-text query.
func (o *Orchestrator) Search(query string, requester domain.ParticipantID) []domain.Message {
	return search.Results(o.messages.Snapshot(), query, requester)
}

// Conversation returns the live ordered view between two participants.
func (o *Orchestrator) Conversation(a, b domain.ParticipantID) []domain.Message {
	return o.messages.Conversation(a, b)
}

// History pages through the archived conversation, newest first.
func (o *Orchestrator) History(conversationID domain.ConversationID, cursor *string) ([]archive.ArchivedMessage, *string, error) {
	return o.history.History(conversationID, cursor)
}

// MarkConversationRead advances every tracked message of the pair to read.
func (o *Orchestrator) MarkConversationRead(sender, recipient domain.ParticipantID) {
	o.messages.MarkConversationRead(sender, recipient)
}

// Counters exposes the telemetry tallies.
func (o *Orchestrator) Counters() map[string]int {
	return o.counter.Snapshot()
}

// Dispatch queues an event for fan-out without ever blocking a connection
// handler. A full pipeline drops the event with a warning: best-effort
// delivery, by contract.
func (o *Orchestrator) Dispatch(evt event.DomainEvent) {
	select {
	case o.events <- evt:
	default:
		o.log.Warn(fmt.Sprintf("Event channel full for %s, dropping event", evt.Conversation()))
	}
}

// Start registers the worker pool with the supervisor and blocks until
// the context is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	sinks := append([]contract.EventSink{archive.NewSink(o.history, o.log)}, o.permanentSinks...)

	for i := 0; i < o.cfg.NumberOfWorkers; i++ {
		o.supervisor.Add(workers.NewFanoutWorker(
			o.log, o.registry, o.events, o.telemetry, sinks, o.cfg.SinkTimeout))
	}
	o.supervisor.Add(workers.NewTelemetryWorker(o.log, o.cfg.MetricInterval, o.telemetry, o.counter))
	if o.cfg.HeartbeatInterval > 0 {
		o.supervisor.Add(workers.NewHeartbeatWorker(o.log, o.cfg.HeartbeatInterval))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown: workers observe the cancellation
// and drain, Run returns, pending delivery timers become no-ops.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
