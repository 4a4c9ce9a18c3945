// Package runtime wires presence, connections and the event pipeline
// together. It orchestrates the system without containing domain rules.
package runtime

import (
	"chat-core/contract"
	"chat-core/domain"
	"sync"
)

type Set map[domain.ConnectionID]struct{}

// Registry tracks which connections are subscribed to which conversation.
// A connection occupies at most one conversation at a time; joining a new
// one implicitly leaves the previous. All operations are total functions
// over the current state, there is nothing to fail.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]contract.EventSink
	members  map[domain.ConversationID]Set
	current  map[domain.ConnectionID]domain.ConversationID
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnectionID]contract.EventSink),
		members:  make(map[domain.ConversationID]Set),
		current:  make(map[domain.ConnectionID]domain.ConversationID),
	}
}

// Join subscribes a connection to a conversation, leaving whichever
// conversation it previously occupied. Idempotent when already there.
// Returns the member count after the join, observable for logging.
func (r *Registry) Join(conn domain.ConnectionID, sink contract.EventSink, conversationID domain.ConversationID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.current[conn]; ok && previous != conversationID {
		r.leaveLocked(conn, previous)
	}

	r.sessions[conn] = sink
	if _, ok := r.members[conversationID]; !ok {
		r.members[conversationID] = make(Set)
	}
	r.members[conversationID][conn] = struct{}{}
	r.current[conn] = conversationID
	return len(r.members[conversationID])
}

// Leave removes the connection from the conversation's member set. The
// session itself survives: the connection is still alive, just roomless.
// When the last member leaves, the conversation entry is removed entirely
// so no empty rooms dangle. Returns the remaining member count.
func (r *Registry) Leave(conn domain.ConnectionID, conversationID domain.ConversationID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(conn, conversationID)
	return len(r.members[conversationID])
}

// Disconnect removes the connection from whichever conversation it
// occupies and forgets its sink. Called on connection teardown before any
// further broadcast can target it. Idempotent for never-joined connections.
func (r *Registry) Disconnect(conn domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conversationID, ok := r.current[conn]; ok {
		r.leaveLocked(conn, conversationID)
	}
	delete(r.sessions, conn)
}

// Members returns the current subscribers of a conversation together with
// their sinks, so the broadcaster can exclude the origin. Empty when the
// conversation has no members.
func (r *Registry) Members(conversationID domain.ConversationID) []contract.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[conversationID]
	if !ok {
		return nil
	}
	active := make([]contract.Member, 0, len(set))
	for conn := range set {
		if sink, exists := r.sessions[conn]; exists {
			active = append(active, contract.Member{Connection: conn, Sink: sink})
		}
	}
	return active
}

func (r *Registry) leaveLocked(conn domain.ConnectionID, conversationID domain.ConversationID) {
	if set, ok := r.members[conversationID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.members, conversationID)
		}
	}
	if r.current[conn] == conversationID {
		delete(r.current, conn)
	}
}
