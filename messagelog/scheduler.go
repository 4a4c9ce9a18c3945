package messagelog

import (
	"chat-core/domain"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TransitionOffsets are the delivery-status deadlines, measured from the
// message creation instant rather than chained to each other. A late
// firing of an earlier stage therefore never delays the later ones.
type TransitionOffsets struct {
	Sent      time.Duration
	Delivered time.Duration
	Read      time.Duration
}

// DefaultOffsets is the demo-tuned progression: sent at +500ms, delivered
// at +1500ms, read at +4000ms.
func DefaultOffsets() TransitionOffsets {
	return TransitionOffsets{
		Sent:      500 * time.Millisecond,
		Delivered: 1500 * time.Millisecond,
		Read:      4 * time.Second,
	}
}

// Scheduler drives the delivery lifecycle of locally authored messages.
// Transitions are registered as absolute-deadline timers keyed by message
// id; each firing is check-then-act through the apply callback, so a timer
// that outlives its message (log cleared) or fires after the message
// already advanced through another path degrades to a no-op.
type Scheduler struct {
	mu      sync.Mutex
	log     *slog.Logger
	offsets TransitionOffsets
	apply   func(id domain.MessageID, target domain.Status) bool
	timers  map[domain.MessageID][]*time.Timer
}

func NewScheduler(log *slog.Logger, offsets TransitionOffsets,
	apply func(id domain.MessageID, target domain.Status) bool) *Scheduler {
	return &Scheduler{
		log:     log,
		offsets: offsets,
		apply:   apply,
		timers:  make(map[domain.MessageID][]*time.Timer),
	}
}

// Schedule registers the sent/delivered/read transitions for a freshly
// appended message. Deadlines are computed from createdAt, not from "now":
// scheduling late still fires every stage, immediately if overdue.
func (s *Scheduler) Schedule(id domain.MessageID, createdAt time.Time) {
	steps := []struct {
		target domain.Status
		offset time.Duration
	}{
		{domain.StatusSent, s.offsets.Sent},
		{domain.StatusDelivered, s.offsets.Delivered},
		{domain.StatusRead, s.offsets.Read},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, step := range steps {
		target := step.target
		delay := time.Until(createdAt.Add(step.offset))
		if delay < 0 {
			delay = 0
		}
		t := time.AfterFunc(delay, func() {
			if !s.apply(id, target) {
				s.log.Debug(fmt.Sprintf("Skipped transition to %s for message %d", target, id))
			}
			if target == domain.StatusRead {
				s.forget(id)
			}
		})
		s.timers[id] = append(s.timers[id], t)
	}
}

// Cancel drops the pending transitions of a single message.
func (s *Scheduler) Cancel(id domain.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers[id] {
		t.Stop()
	}
	delete(s.timers, id)
}

// CancelAll drops every pending transition. Called on log teardown; a
// timer that already fired concurrently finds no message and skips.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timers := range s.timers {
		for _, t := range timers {
			t.Stop()
		}
		delete(s.timers, id)
	}
}

func (s *Scheduler) forget(id domain.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, id)
}

// Pending reports how many messages still have registered transitions.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
