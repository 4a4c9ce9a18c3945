// Package domain contains core concepts of the messaging system.
// This file defines conversation identity for two-party chats.
// No runtime, network, or UI logic should be added here.
package domain

import "fmt"

// ParticipantID identifies a chat participant. The core treats it as an
// opaque integer; names and avatars live in the external user directory.
type ParticipantID int

// ConversationID addresses the conversation between two participants.
// The format is shared by every process doing room addressing, so it must
// never change shape: both ids in ascending numeric order, hyphen-joined.
type ConversationID string

// ConnectionID identifies a live connection (one socket, one task).
type ConnectionID string

// ConversationKey derives the canonical conversation identifier for an
// unordered participant pair. Commutative: ConversationKey(a, b) and
// ConversationKey(b, a) are the same id.
func ConversationKey(a, b ParticipantID) ConversationID {
	if b < a {
		a, b = b, a
	}
	return ConversationID(fmt.Sprintf("%d-%d", a, b))
}
