package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_EVENT_WAIT bounds how long a scenario waits for a single event
	EventWait time.Duration `envconfig:"E2E_EVENT_WAIT" default:"3s"`
	// E2E_LOG_LEVEL controls the engine logger during scenarios
	LogLevel string `envconfig:"E2E_LOG_LEVEL" default:"WARN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
