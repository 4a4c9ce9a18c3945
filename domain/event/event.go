package event

import (
	"chat-core/domain"
)

// DomainEvent is anything the fan-out pipeline can route to the members of
// a conversation.
type DomainEvent interface {
	Conversation() domain.ConversationID
}

// Originated is implemented by events tied to a specific connection.
// The broadcaster never echoes an event back to its origin.
type Originated interface {
	OriginConnection() domain.ConnectionID
}

// MessagePosted is emitted once per successful append on the local log.
type MessagePosted struct {
	Origin  domain.ConnectionID
	Message domain.Message
	// Lang is the ISO 639-1 code detected on the sanitized content,
	// empty when detection was inconclusive.
	Lang string
}

func (e MessagePosted) Conversation() domain.ConversationID {
	return e.Message.Conversation()
}

func (e MessagePosted) OriginConnection() domain.ConnectionID { return e.Origin }

// StatusAdvanced is emitted every time a delivery-status transition is
// applied, whether by the scheduler or by an external signal.
type StatusAdvanced struct {
	Message domain.Message
	Status  domain.Status
}

func (e StatusAdvanced) Conversation() domain.ConversationID {
	return e.Message.Conversation()
}

// TypingChanged signals that a participant started or stopped typing.
type TypingChanged struct {
	Origin         domain.ConnectionID
	ConversationID domain.ConversationID
	UserID         domain.ParticipantID
	Typing         bool
}

func (e TypingChanged) Conversation() domain.ConversationID { return e.ConversationID }

func (e TypingChanged) OriginConnection() domain.ConnectionID { return e.Origin }

// ParticipantJoined and ParticipantLeft track presence changes. They feed
// telemetry; membership itself lives in the registry.
type ParticipantJoined struct {
	Connection     domain.ConnectionID
	ConversationID domain.ConversationID
	Members        int
}

func (e ParticipantJoined) Conversation() domain.ConversationID { return e.ConversationID }

func (e ParticipantJoined) OriginConnection() domain.ConnectionID { return e.Connection }

type ParticipantLeft struct {
	Connection     domain.ConnectionID
	ConversationID domain.ConversationID
	Members        int
}

func (e ParticipantLeft) Conversation() domain.ConversationID { return e.ConversationID }

func (e ParticipantLeft) OriginConnection() domain.ConnectionID { return e.Connection }
