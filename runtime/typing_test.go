package runtime

import (
	"chat-core/domain"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTypingTracker_TouchAndClear(t *testing.T) {
	req := require.New(t)
	tracker := newTypingTracker(time.Minute)
	conn := domain.ConnectionID(uuid.NewString())

	// First touch starts the typing state
	req.True(tracker.touch(conn, func() {}))

	// Further touches only rearm the expiry
	req.False(tracker.touch(conn, func() {}))

	// Clearing reports the connection was typing, once
	req.True(tracker.clear(conn))
	req.False(tracker.clear(conn))
}

func TestTypingTracker_ExpiresOnItsOwn(t *testing.T) {
	req := require.New(t)
	tracker := newTypingTracker(30 * time.Millisecond)
	conn := domain.ConnectionID(uuid.NewString())

	var expired atomic.Bool
	req.True(tracker.touch(conn, func() { expired.Store(true) }))

	req.Eventually(expired.Load, time.Second, 5*time.Millisecond)
}

func TestTypingTracker_TouchDelaysExpiry(t *testing.T) {
	req := require.New(t)
	tracker := newTypingTracker(60 * time.Millisecond)
	conn := domain.ConnectionID(uuid.NewString())

	var expired atomic.Bool
	tracker.touch(conn, func() { expired.Store(true) })

	// Keep typing: each touch pushes the deadline back
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		tracker.touch(conn, func() { expired.Store(true) })
		req.False(expired.Load())
	}

	req.Eventually(expired.Load, time.Second, 5*time.Millisecond)
}
