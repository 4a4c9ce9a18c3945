//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-core/archive"
	"chat-core/domain"
	"chat-core/runtime"
)

type IChatService interface {
	Connect() *runtime.Connection
	Join(conn *runtime.Connection, conversationID domain.ConversationID)
	Leave(conn *runtime.Connection, conversationID domain.ConversationID)
	Disconnect(conn *runtime.Connection)
	Send(conn *runtime.Connection, input domain.MessageInput) (domain.Message, error)
	Receive(msg domain.Message) bool
	SetTyping(conn *runtime.Connection, conversationID domain.ConversationID, userID domain.ParticipantID, typing bool)
	Search(query string, requester domain.ParticipantID) []domain.Message
	Conversation(a, b domain.ParticipantID) []domain.Message
	History(conversationID domain.ConversationID, cursor *string) ([]archive.ArchivedMessage, *string, error)
	MarkConversationRead(sender, recipient domain.ParticipantID)
}

// ChatService is the application facade over the orchestrator. Transports
// (gRPC, CLI, tests) depend on this interface, never on the runtime.
type ChatService struct {
	orchestrator *runtime.Orchestrator
}

func NewChatService(o *runtime.Orchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) Connect() *runtime.Connection {
	return s.orchestrator.Connect()
}

func (s *ChatService) Join(conn *runtime.Connection, conversationID domain.ConversationID) {
	s.orchestrator.Join(conn, conversationID)
}

func (s *ChatService) Leave(conn *runtime.Connection, conversationID domain.ConversationID) {
	s.orchestrator.Leave(conn, conversationID)
}

func (s *ChatService) Disconnect(conn *runtime.Connection) {
	s.orchestrator.Disconnect(conn)
}

func (s *ChatService) Send(conn *runtime.Connection, input domain.MessageInput) (domain.Message, error) {
	return s.orchestrator.Send(conn, input)
}

func (s *ChatService) Receive(msg domain.Message) bool {
	return s.orchestrator.Receive(msg)
}

func (s *ChatService) SetTyping(conn *runtime.Connection, conversationID domain.ConversationID,
	userID domain.ParticipantID, typing bool) {
	s.orchestrator.SetTyping(conn, conversationID, userID, typing)
}

func (s *ChatService) Search(query string, requester domain.ParticipantID) []domain.Message {
	return s.orchestrator.Search(query, requester)
}

func (s *ChatService) Conversation(a, b domain.ParticipantID) []domain.Message {
	return s.orchestrator.Conversation(a, b)
}

func (s *ChatService) History(conversationID domain.ConversationID, cursor *string) ([]archive.ArchivedMessage, *string, error) {
	return s.orchestrator.History(conversationID, cursor)
}

func (s *ChatService) MarkConversationRead(sender, recipient domain.ParticipantID) {
	s.orchestrator.MarkConversationRead(sender, recipient)
}
