package main

import (
	"chat-core/archive"
	"chat-core/directory"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/internal"
	"chat-core/messagelog"
	"chat-core/moderation"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/services"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// chatctl runs the whole messaging core in-process and plays a short
// two-user conversation against it, printing everything a second
// participant would observe. Useful to eyeball the pipeline without a
// transport in front of it.
func main() {
	query := flag.String("search", "hello", "Query to run against the message history at the end")
	censored := flag.String("censored", "idiot,stupid", "Comma separated words to mask")
	flag.Parse()

	if err := demo(*query, *censored); err != nil {
		log.Fatal(err)
	}
}

func demo(query string, censored string) error {
	logger := logs.GetLoggerFromString("WARN")

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	moderator, err := moderation.NewModerator(internal.WordList(censored), '*')
	if err != nil {
		return err
	}

	messages := messagelog.New(logger, 2000, 5*time.Second)
	scheduler := messagelog.NewScheduler(logger, messagelog.DefaultOffsets(), messages.UpdateStatus)
	messages.AttachScheduler(scheduler)

	orchestrator := runtime.NewOrchestrator(
		logger,
		workers.NewSupervisor(logger, time.Second),
		runtime.NewRegistry(),
		messages, moderator,
		archive.NewRepository(db, logger, lo.ToPtr(50)),
		runtime.OrchestratorConfig{
			NumberOfWorkers:      2,
			BufferSize:           128,
			ConnectionBufferSize: 32,
			SinkTimeout:          time.Second,
			TypingTimeout:        1500 * time.Millisecond,
			MetricInterval:       time.Minute,
		},
	)
	service := services.NewChatService(orchestrator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go orchestrator.Start(ctx)
	defer orchestrator.Stop()

	users := directory.Static()
	alisha, john := domain.ParticipantID(1), domain.ParticipantID(2)
	conversation := domain.ConversationKey(alisha, john)

	alishaConn := service.Connect()
	johnConn := service.Connect()
	service.Join(alishaConn, conversation)
	service.Join(johnConn, conversation)
	defer service.Disconnect(alishaConn)
	defer service.Disconnect(johnConn)

	// Everything John's connection receives, printed as it arrives.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-johnConn.Events():
				printEvent(users, evt)
			}
		}
	}()

	banner(fmt.Sprintf("Conversation %s", conversation))

	service.SetTyping(alishaConn, conversation, alisha, true)
	for _, content := range []string{
		"hello John, how are you?",
		"you stupid keyboard ate my message",
		"say hello to Maddie for me",
	} {
		if _, err := service.Send(alishaConn, domain.MessageInput{
			SenderID:    alisha,
			RecipientID: john,
			Content:     content,
		}); err != nil {
			return err
		}
	}
	service.SetTyping(alishaConn, conversation, alisha, false)

	// Let the delivery lifecycle play out (sending -> sent -> delivered -> read).
	time.Sleep(5 * time.Second)
	cancel()
	<-done

	banner(fmt.Sprintf("Search %q as %s", query, users.DisplayName(john)))
	printMessages(users, service.Search(query, john))

	banner("Archived history (newest first)")
	page, _, err := service.History(conversation, nil)
	if err != nil {
		return err
	}
	printMessages(users, lo.Map(page, func(m archive.ArchivedMessage, _ int) domain.Message {
		return m.ToMessage()
	}))

	return nil
}

func printEvent(users *directory.Directory, evt event.DomainEvent) {
	switch e := evt.(type) {
	case event.MessagePosted:
		color.New(color.FgCyan).Printf("[%s] %s: %s (lang=%s)\n",
			e.Message.Timestamp.Format("15:04:05"),
			users.DisplayName(e.Message.SenderID), e.Message.Content, e.Lang)
	case event.StatusAdvanced:
		color.New(color.FgYellow).Printf("message %d is now %s\n", e.Message.ID, e.Status)
	case event.TypingChanged:
		verb := lo.Ternary(e.Typing, "is typing...", "stopped typing")
		color.New(color.FgMagenta).Printf("%s %s\n", users.DisplayName(e.UserID), verb)
	case event.ParticipantJoined:
		fmt.Printf("someone joined %s (%d members)\n", e.ConversationID, e.Members)
	case event.ParticipantLeft:
		fmt.Printf("someone left %s (%d members)\n", e.ConversationID, e.Members)
	}
}

func printMessages(users *directory.Directory, messages []domain.Message) {
	table := newTable()
	for _, m := range messages {
		table.Append([]string{
			fmt.Sprintf("%d", m.ID),
			m.Timestamp.Format("15:04:05"),
			users.DisplayName(m.SenderID),
			users.DisplayName(m.RecipientID),
			string(m.Status),
			m.Content,
		})
	}
	table.Render()
}

func banner(title string) {
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("  ====== %s ======", title)))
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "At", "From", "To", "Status", "Content"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
