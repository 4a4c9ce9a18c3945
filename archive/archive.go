//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=../mocks/mock_archive.go -package=mocks
// Package archive keeps a per-conversation message history in BadgerDB
// with cursor pagination. The database is opened in-memory: this core
// promises no durability across restarts, the archive only exists so
// history pages survive a log Clear and can be scanned independently of
// the live log's locking.
package archive

import (
	"chat-core/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IRepository interface {
	Store(message ArchivedMessage) error
	History(conversationID domain.ConversationID, cursor *string) ([]ArchivedMessage, *string, error)
}

type Repository struct {
	db       *badger.DB
	log      *slog.Logger
	pageSize *int
}

func NewRepository(db *badger.DB, log *slog.Logger, pageSize *int) Repository {
	return Repository{db: db, log: log, pageSize: pageSize}
}

type ArchivedMessage struct {
	ID             domain.MessageID      `json:"id"`
	ConversationID domain.ConversationID `json:"conversation_id"`
	SenderID       domain.ParticipantID  `json:"sender_id"`
	RecipientID    domain.ParticipantID  `json:"recipient_id"`
	Content        string                `json:"content"`
	At             time.Time             `json:"at"`
}

func FromMessage(m domain.Message) ArchivedMessage {
	return ArchivedMessage{
		ID:             m.ID,
		ConversationID: m.Conversation(),
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		At:             m.Timestamp,
	}
}

// ToMessage rebuilds the domain view of an archived message. The delivery
// status is not archived, so the result carries none.
func (m ArchivedMessage) ToMessage() domain.Message {
	return domain.Message{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		Timestamp:   m.At,
	}
}

// Store persists a message under "msg:{conversation}:{timestamp}:{id}".
// The 19-digit zero padding keeps keys in chronological order under
// Badger's lexicographic iteration; the message id disambiguates two
// messages archived at the same nanosecond.
func (r Repository) Store(message ArchivedMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%d",
		message.ConversationID,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// History retrieves a page of messages for a conversation, newest first,
// using a reverse prefix scan. The returned cursor is opaque; feed it back
// to get the next (older) page. A nil cursor starts from the newest entry.
func (r Repository) History(conversationID domain.ConversationID, cursor *string) ([]ArchivedMessage, *string, error) {
	var rawValues [][]byte
	var lastKey string
	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", conversationID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every padded timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.pageSize != nil && len(rawValues) == *r.pageSize {
				r.log.Debug(fmt.Sprintf("Page limit of %d messages reached", *r.pageSize))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawValues = append(rawValues, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]ArchivedMessage, 0, len(rawValues))
	for _, raw := range rawValues {
		var message ArchivedMessage
		if err = json.Unmarshal(raw, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}
