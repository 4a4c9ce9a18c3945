package domain

import "time"

// MessageID is unique and monotonically increasing per originating process.
// It is the primary deduplication key across log instances.
type MessageID int64

// Status is the delivery lifecycle stage of a locally authored message as
// perceived by its sender. Received messages carry StatusNone: the remote
// party's lifecycle is not tracked from this side.
type Status string

const (
	StatusNone      Status = ""
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

var statusRank = map[Status]int{
	StatusSending:   1,
	StatusSent:      2,
	StatusDelivered: 3,
	StatusRead:      4,
}

// Advances reports whether moving to s from current is a forward step on
// the sending → sent → delivered → read ladder. Untracked messages
// (StatusNone) never advance: the lifecycle only applies to local authors.
func (s Status) Advances(current Status) bool {
	if current == StatusNone {
		return false
	}
	return statusRank[s] > statusRank[current]
}

// Message represents a single chat message. Immutable once created except
// for Status, which only the delivery scheduler and read receipts mutate.
type Message struct {
	ID          MessageID
	SenderID    ParticipantID
	RecipientID ParticipantID
	Content     string
	Timestamp   time.Time
	Status      Status
}

// Conversation returns the canonical id of the unordered participant pair.
func (m Message) Conversation() ConversationID {
	return ConversationKey(m.SenderID, m.RecipientID)
}

// Between reports whether the message belongs to the conversation of the
// given unordered pair.
func (m Message) Between(a, b ParticipantID) bool {
	return m.Conversation() == ConversationKey(a, b)
}

// MessageInput is the inbound submission payload, before the log assigns
// identity and a creation timestamp.
type MessageInput struct {
	SenderID    ParticipantID
	RecipientID ParticipantID
	Content     string
}
