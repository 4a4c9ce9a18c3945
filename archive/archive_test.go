package archive

import (
	"chat-core/domain"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func archived(id int64, conv domain.ConversationID, sender domain.ParticipantID, content string, at time.Time) ArchivedMessage {
	return ArchivedMessage{
		ID:             domain.MessageID(id),
		ConversationID: conv,
		SenderID:       sender,
		RecipientID:    3 - sender,
		Content:        content,
		At:             at,
	}
}

func Test_Store_And_History_NewestFirst(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRepository(db, slog.Default(), nil)

	conv := domain.ConversationID("1-2")
	at := time.Now().UTC()

	// Given three messages stored oldest to newest
	for i, content := range []string{"first", "second", "third"} {
		err := repository.Store(archived(int64(1001+i), conv, 1, content, at.Add(time.Duration(i)*time.Minute)))
		req.NoError(err)
	}

	// When fetching the history
	page, _, err := repository.History(conv, nil)
	req.NoError(err)

	// Then messages come back newest first
	req.Len(page, 3)
	req.Equal("third", page[0].Content)
	req.Equal("second", page[1].Content)
	req.Equal("first", page[2].Content)
}

func Test_History_ScopedPerConversation(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewRepository(db, slog.Default(), nil)
	at := time.Now().UTC()

	req.NoError(repository.Store(archived(1001, "1-2", 1, "ours", at)))
	req.NoError(repository.Store(archived(1002, "1-3", 1, "theirs", at)))

	page, _, err := repository.History("1-2", nil)
	req.NoError(err)
	req.Len(page, 1)
	req.Equal("ours", page[0].Content)
}

func Test_History_Pagination(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repo := NewRepository(db, slog.Default(), lo.ToPtr(4))
	conv := domain.ConversationID("1-2")
	now := time.Now().UTC()

	// Given 10 messages, oldest to newest
	for i := 1; i <= 10; i++ {
		req.NoError(repo.Store(archived(int64(1000+i), conv,
			1, fmt.Sprintf("Message %d", i), now.Add(time.Duration(i)*time.Minute))))
	}

	// --- PAGE 1 ---
	page1, cursor1, err := repo.History(conv, nil)
	req.NoError(err)
	req.Len(page1, 4)
	req.Equal("Message 10", page1[0].Content)
	req.Equal("Message 7", page1[3].Content)
	req.NotNil(cursor1)

	// --- PAGE 2 ---
	page2, cursor2, err := repo.History(conv, cursor1)
	req.NoError(err)
	req.Len(page2, 4)
	req.Equal("Message 6", page2[0].Content)
	req.Equal("Message 3", page2[3].Content)
	req.NotNil(cursor2)

	// --- PAGE 3 (end) ---
	page3, cursor3, err := repo.History(conv, cursor2)
	req.NoError(err)
	req.Len(page3, 2)
	req.Equal("Message 2", page3[0].Content)
	req.Equal("Message 1", page3[1].Content)

	// Continuing past the end yields nothing
	page4, _, err := repo.History(conv, cursor3)
	req.NoError(err)
	req.Empty(page4)
}

func Test_ArchivedMessage_RoundTrip(t *testing.T) {
	req := require.New(t)
	msg := domain.Message{
		ID: 1001, SenderID: 1, RecipientID: 2,
		Content: "hello", Timestamp: time.Now().UTC(),
		Status: domain.StatusRead,
	}

	back := FromMessage(msg).ToMessage()

	// Identity, participants and content survive; delivery status does not
	req.Equal(msg.ID, back.ID)
	req.Equal(msg.SenderID, back.SenderID)
	req.Equal(msg.Content, back.Content)
	req.Equal(domain.StatusNone, back.Status)
}
