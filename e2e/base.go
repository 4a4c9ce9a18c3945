package e2e

import (
	"chat-core/archive"
	"chat-core/domain/event"
	"chat-core/messagelog"
	"chat-core/moderation"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"chat-core/services"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

// BaseSuite boots the whole engine in-process for each scenario: in-memory
// archive, moderation, message log with fast lifecycle offsets, supervised
// fan-out workers. No transport is involved; scenarios talk to the service
// facade the way a transport handler would.
type BaseSuite struct {
	suite.Suite
	Config Config

	db      *badger.DB
	cancel  context.CancelFunc
	engine  *runtime.Orchestrator
	Service *services.ChatService
}

// Offsets compressed so a full sending -> read lifecycle fits in a test run.
func fastOffsets() messagelog.TransitionOffsets {
	return messagelog.TransitionOffsets{
		Sent:      50 * time.Millisecond,
		Delivered: 150 * time.Millisecond,
		Read:      400 * time.Millisecond,
	}
}

func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupTest() {
	logger := logs.GetLoggerFromString(s.Config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	s.Require().NoError(err)
	s.db = db

	moderator, err := moderation.NewModerator([]string{"stupid", "idiot"}, '*')
	s.Require().NoError(err)

	messages := messagelog.New(logger, 2000, 5*time.Second)
	scheduler := messagelog.NewScheduler(logger, fastOffsets(), messages.UpdateStatus)
	messages.AttachScheduler(scheduler)

	s.engine = runtime.NewOrchestrator(
		logger,
		workers.NewSupervisor(logger, 100*time.Millisecond),
		runtime.NewRegistry(),
		messages, moderator,
		archive.NewRepository(db, logger, lo.ToPtr(10)),
		runtime.OrchestratorConfig{
			NumberOfWorkers:      2,
			BufferSize:           128,
			ConnectionBufferSize: 32,
			SinkTimeout:          time.Second,
			TypingTimeout:        200 * time.Millisecond,
			MetricInterval:       time.Minute,
		},
	)
	s.Service = services.NewChatService(s.engine)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.engine.Start(ctx)
}

func (s *BaseSuite) TearDownTest() {
	s.cancel()
	s.engine.Stop()
	s.Require().NoError(s.db.Close())
}

// Step prints a colorized scenario header in the test log.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// WaitEvent blocks until the connection receives an event matching the
// predicate, failing the scenario after the configured wait.
func (s *BaseSuite) WaitEvent(conn *runtime.Connection, name string,
	match func(event.DomainEvent) bool) event.DomainEvent {
	deadline := time.After(s.Config.EventWait)
	for {
		select {
		case evt := <-conn.Events():
			if match(evt) {
				return evt
			}
		case <-deadline:
			s.Require().FailNowf("timed out", "no %s event within %s", name, s.Config.EventWait)
			return nil
		}
	}
}
