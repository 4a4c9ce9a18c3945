package main

import (
	"chat-core/archive"
	"chat-core/internal"
	"chat-core/messagelog"
	"chat-core/moderation"
	"chat-core/runtime"
	"chat-core/runtime/workers"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the engine lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB, in-memory)
	// The archive lives and dies with the process. Conversations are
	// ephemeral state; the authoritative log is rebuilt on restart.
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Setup Supervision & Orchestration
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	registry := runtime.NewRegistry()
	history := archive.NewRepository(db, logger, config.LimitMessages)

	moderator, err := moderation.NewModerator(internal.WordList(config.CensoredWords), charReplacement)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	messages := messagelog.New(logger, config.MaxContentLength, config.DedupWindow)
	scheduler := messagelog.NewScheduler(logger, messagelog.TransitionOffsets{
		Sent:      config.StatusSentAfter,
		Delivered: config.StatusDeliveredAfter,
		Read:      config.StatusReadAfter,
	}, messages.UpdateStatus)
	messages.AttachScheduler(scheduler)

	orchestrator := runtime.NewOrchestrator(
		logger, sup, registry, messages, moderator, history,
		runtime.OrchestratorConfig{
			NumberOfWorkers:      config.NumberOfWorkers,
			BufferSize:           config.BufferSize,
			ConnectionBufferSize: config.ConnectionBufferSize,
			SinkTimeout:          config.SinkTimeout,
			TypingTimeout:        config.TypingTimeout,
			MetricInterval:       config.MetricInterval,
			HeartbeatInterval:    config.HeartbeatInterval,
		},
	)

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)

	// 5. Start the Engine (Workers and Fanout)
	go func() {
		logger.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	orchestrator.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}
