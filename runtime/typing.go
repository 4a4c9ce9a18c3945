package runtime

import (
	"chat-core/domain"
	"sync"
	"time"
)

// typingTracker debounces typing notifications per connection. A started
// typing state expires on its own after the configured inactivity window,
// so a vanished peer never leaves a stuck "is typing" banner behind.
type typingTracker struct {
	mu      sync.Mutex
	timeout time.Duration
	timers  map[domain.ConnectionID]*time.Timer
}

func newTypingTracker(timeout time.Duration) *typingTracker {
	return &typingTracker{
		timeout: timeout,
		timers:  make(map[domain.ConnectionID]*time.Timer),
	}
}

// touch marks the connection as typing and (re)arms its expiry. Returns
// true when the connection was not already typing, i.e. the transition is
// worth broadcasting.
func (t *typingTracker) touch(conn domain.ConnectionID, expire func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.timers[conn]; ok {
		timer.Reset(t.timeout)
		return false
	}
	t.timers[conn] = time.AfterFunc(t.timeout, expire)
	return true
}

// clear stops tracking the connection. Returns true when it was typing.
func (t *typingTracker) clear(conn domain.ConnectionID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[conn]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, conn)
	return true
}
