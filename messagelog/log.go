//go:generate go run go.uber.org/mock/mockgen -source=log.go -destination=../mocks/mock_messagelog.go -package=mocks
// Package messagelog holds the authoritative ordered view of all messages
// between participants, merging locally originated entries with remotely
// delivered ones behind a single deduplication authority.
package messagelog

import (
	cerrors "chat-core/errors"

	"chat-core/domain"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

// firstID seeds the process-local id counter. Ids are monotonically
// increasing per originating process; uniqueness across processes is
// handled by the dedup rules on receive.
const firstID = 1000

type ILog interface {
	Append(input domain.MessageInput) (domain.Message, error)
	Receive(msg domain.Message) bool
	UpdateStatus(id domain.MessageID, status domain.Status) bool
	Conversation(a, b domain.ParticipantID) []domain.Message
	Clear()
}

// Log is safe for concurrent use. Mutations are serialized under a single
// mutex; no lock is held across a timer or channel operation.
type Log struct {
	mu               sync.Mutex
	log              *slog.Logger
	maxContentLength int
	dedupWindow      time.Duration
	nextID           atomic.Int64
	messages         []domain.Message
	index            map[domain.MessageID]int
	scheduler        *Scheduler
	onStatus         func(msg domain.Message, status domain.Status)
}

func New(log *slog.Logger, maxContentLength int, dedupWindow time.Duration) *Log {
	l := &Log{
		log:              log,
		maxContentLength: maxContentLength,
		dedupWindow:      dedupWindow,
		index:            make(map[domain.MessageID]int),
	}
	l.nextID.Store(firstID)
	return l
}

// AttachScheduler wires the delivery lifecycle: every Append schedules the
// status progression, every Clear cancels whatever is still pending.
// Without a scheduler attached, appended messages simply stay "sending".
func (l *Log) AttachScheduler(s *Scheduler) {
	l.scheduler = s
}

// OnStatusChange registers a callback fired after each applied transition,
// outside the log mutex.
func (l *Log) OnStatusChange(fn func(msg domain.Message, status domain.Status)) {
	l.onStatus = fn
}

// Append is the optimistic local path: validate, assign identity and a
// creation timestamp, insert with status "sending" and start the delivery
// lifecycle. The returned Message is the caller's broadcast payload.
func (l *Log) Append(input domain.MessageInput) (domain.Message, error) {
	if err := validate.Var(input.Content, fmt.Sprintf("required,max=%d", l.maxContentLength)); err != nil {
		return domain.Message{}, fmt.Errorf("%w: %v", cerrors.ErrInvalidContent, err)
	}

	msg := domain.Message{
		ID:          domain.MessageID(l.nextID.Add(1)),
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		Content:     input.Content,
		Timestamp:   time.Now().UTC(),
		Status:      domain.StatusSending,
	}

	l.mu.Lock()
	l.index[msg.ID] = len(l.messages)
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	if l.scheduler != nil {
		l.scheduler.Schedule(msg.ID, msg.Timestamp)
	}
	return msg, nil
}

// Receive reconciles a remotely delivered message against the local log.
// It rejects exact id duplicates and fuzzy duplicates: identical content
// and sender within the dedup window, which catches the optimistic insert
// racing the network echo of the same logical message under a different
// generated id. Returns true when the message was actually added.
func (l *Log) Receive(msg domain.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.index[msg.ID]; ok {
		l.log.Debug(fmt.Sprintf("Duplicate message id %d, skipping", msg.ID))
		return false
	}
	for _, existing := range l.messages {
		if existing.SenderID == msg.SenderID &&
			existing.Content == msg.Content &&
			absDuration(existing.Timestamp.Sub(msg.Timestamp)) < l.dedupWindow {
			l.log.Debug(fmt.Sprintf("Fuzzy duplicate of message %d, skipping", existing.ID))
			return false
		}
	}

	// Status is preserved as-is: received messages are usually untracked.
	l.index[msg.ID] = len(l.messages)
	l.messages = append(l.messages, msg)
	return true
}

// UpdateStatus applies a monotonic transition. Unknown ids and
// non-advancing targets are silent no-ops: both are benign races
// (cleared log, late timer, external signal that already won).
func (l *Log) UpdateStatus(id domain.MessageID, status domain.Status) bool {
	l.mu.Lock()
	idx, ok := l.index[id]
	if !ok || !status.Advances(l.messages[idx].Status) {
		l.mu.Unlock()
		return false
	}
	l.messages[idx].Status = status
	updated := l.messages[idx]
	l.mu.Unlock()

	if l.onStatus != nil {
		l.onStatus(updated, status)
	}
	return true
}

// MarkConversationRead advances every tracked message from sender to
// recipient straight to "read". Monotonicity makes it idempotent.
func (l *Log) MarkConversationRead(sender, recipient domain.ParticipantID) {
	l.mu.Lock()
	var updated []domain.Message
	for i, msg := range l.messages {
		if msg.SenderID == sender && msg.RecipientID == recipient &&
			domain.StatusRead.Advances(msg.Status) {
			l.messages[i].Status = domain.StatusRead
			updated = append(updated, l.messages[i])
		}
	}
	l.mu.Unlock()

	if l.onStatus != nil {
		for _, msg := range updated {
			l.onStatus(msg, domain.StatusRead)
		}
	}
}

// Conversation returns the messages exchanged between the unordered pair,
// ordered by timestamp ascending. The result is a copy; it never aliases
// the log's internal storage.
func (l *Log) Conversation(a, b domain.ParticipantID) []domain.Message {
	l.mu.Lock()
	msgs := lo.Filter(l.messages, func(m domain.Message, _ int) bool {
		return m.Between(a, b)
	})
	l.mu.Unlock()

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs
}

// Snapshot copies the whole log, in insertion order. Search operates on
// snapshots so ranking stays a pure function of its inputs.
func (l *Log) Snapshot() []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Get returns a message by id.
func (l *Log) Get(id domain.MessageID) (domain.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx, ok := l.index[id]
	if !ok {
		return domain.Message{}, false
	}
	return l.messages[idx], true
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// Clear empties the log wholesale (conversation teardown). Pending
// scheduled transitions are cancelled; any that already fired find no
// message and skip.
func (l *Log) Clear() {
	l.mu.Lock()
	l.messages = nil
	l.index = make(map[domain.MessageID]int)
	l.mu.Unlock()

	if l.scheduler != nil {
		l.scheduler.CancelAll()
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
