package e2e

import (
	"chat-core/domain"
	"chat-core/domain/event"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testConversationSuite struct {
	BaseSuite
}

func TestConversationSuite(t *testing.T) {
	suite.Run(t, &testConversationSuite{})
}

func (s *testConversationSuite) TestFullConversationFlow() {
	alisha, john := domain.ParticipantID(1), domain.ParticipantID(2)
	conversation := domain.ConversationKey(alisha, john)

	alishaConn := s.Service.Connect()
	johnConn := s.Service.Connect()
	defer s.Service.Disconnect(alishaConn)
	defer s.Service.Disconnect(johnConn)

	var posted domain.Message

	// --- STEP 1: PRESENCE ---
	s.Run("Step 1: Both participants join the conversation", func() {
		s.Step("Joining " + string(conversation))
		s.Service.Join(alishaConn, conversation)
		s.Service.Join(johnConn, conversation)

		// Alisha sees John arrive; her own join precedes her membership.
		evt := s.WaitEvent(alishaConn, "ParticipantJoined", func(e event.DomainEvent) bool {
			_, ok := e.(event.ParticipantJoined)
			return ok
		})
		s.Require().Equal(2, evt.(event.ParticipantJoined).Members)
	})

	// --- STEP 2: TYPING INDICATOR ---
	s.Run("Step 2: Typing indicator reaches the peer and expires", func() {
		s.Service.SetTyping(alishaConn, conversation, alisha, true)

		evt := s.WaitEvent(johnConn, "TypingChanged(true)", func(e event.DomainEvent) bool {
			t, ok := e.(event.TypingChanged)
			return ok && t.Typing
		})
		s.Require().Equal(alisha, evt.(event.TypingChanged).UserID)

		// No explicit stop: the tracker times out on its own.
		s.WaitEvent(johnConn, "TypingChanged(false)", func(e event.DomainEvent) bool {
			t, ok := e.(event.TypingChanged)
			return ok && !t.Typing
		})
	})

	// --- STEP 3: MESSAGE DELIVERY & MODERATION ---
	s.Run("Step 3: A message is moderated, delivered, and runs its lifecycle", func() {
		var err error
		posted, err = s.Service.Send(alishaConn, domain.MessageInput{
			SenderID:    alisha,
			RecipientID: john,
			Content:     "hello John, that was a stupid bug",
		})
		s.Require().NoError(err)
		s.Require().Equal(domain.StatusSending, posted.Status)
		s.Require().NotContains(posted.Content, "stupid")

		evt := s.WaitEvent(johnConn, "MessagePosted", func(e event.DomainEvent) bool {
			_, ok := e.(event.MessagePosted)
			return ok
		})
		received := evt.(event.MessagePosted).Message
		s.Require().Equal(posted.ID, received.ID)
		s.Require().Contains(received.Content, "******")

		// The sender side observes the scheduled transitions up to read.
		for _, want := range []domain.Status{domain.StatusSent, domain.StatusDelivered, domain.StatusRead} {
			evt := s.WaitEvent(alishaConn, "StatusAdvanced("+string(want)+")", func(e event.DomainEvent) bool {
				sa, ok := e.(event.StatusAdvanced)
				return ok && sa.Message.ID == posted.ID && sa.Status == want
			})
			s.Require().Equal(posted.ID, evt.(event.StatusAdvanced).Message.ID)
		}
	})

	// --- STEP 4: ECHO DEDUPLICATION ---
	s.Run("Step 4: The broadcast echo does not duplicate the local copy", func() {
		echo := posted
		s.Require().False(s.Service.Receive(echo), "exact id echo must be recognized")

		fuzzy := posted
		fuzzy.ID = posted.ID + 500
		fuzzy.Timestamp = posted.Timestamp.Add(2 * time.Second)
		s.Require().False(s.Service.Receive(fuzzy), "near duplicate within the window must be recognized")

		s.Require().Len(s.Service.Conversation(alisha, john), 1)
	})

	// --- STEP 5: SEARCH ---
	s.Run("Step 5: Search finds the message for a participant only", func() {
		results := s.Service.Search("hello", john)
		s.Require().Len(results, 1)
		s.Require().Equal(posted.ID, results[0].ID)

		s.Require().Empty(s.Service.Search("hello", domain.ParticipantID(3)))
	})

	// --- STEP 6: ARCHIVED HISTORY ---
	s.Run("Step 6: The archive sink captured the message", func() {
		s.Eventually(func() bool {
			page, _, err := s.Service.History(conversation, nil)
			return err == nil && len(page) == 1 && page[0].ID == posted.ID
		}, s.Config.EventWait, 50*time.Millisecond, "message never reached the archive")
	})
}
