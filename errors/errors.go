package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrInvalidContent = fmt.Errorf("invalid message content")
	ErrOutboxFull     = fmt.Errorf("connection outbox full")
)
