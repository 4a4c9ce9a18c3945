package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,required=true"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL"`

	DedupWindow          time.Duration `env:"DEDUP_WINDOW,required=true"`
	StatusSentAfter      time.Duration `env:"STATUS_SENT_AFTER,required=true"`
	StatusDeliveredAfter time.Duration `env:"STATUS_DELIVERED_AFTER,required=true"`
	StatusReadAfter      time.Duration `env:"STATUS_READ_AFTER,required=true"`
	TypingTimeout        time.Duration `env:"TYPING_TIMEOUT,required=true"`

	MaxContentLength int    `env:"MAX_CONTENT_LENGTH,required=true"`
	CensoredWords    string `env:"CENSORED_WORDS"`
	CharReplacement  string `env:"CHARACTER_REPLACEMENT,required=true"`
	LimitMessages    *int   `env:"LIMIT_MESSAGES"`
	LogLevel         string `env:"LOG_LEVEL,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// WordList splits the comma-separated censored words, dropping blanks.
func WordList(str string) []string {
	var words []string
	for _, w := range strings.Split(str, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
