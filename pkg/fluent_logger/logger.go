package fluentlogger

import (
	"fmt"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config holds the settings for connecting to Fluent Bit.
type Config struct {
	Host      string // e.g. "127.0.0.1" or "fluent-bit" inside docker
	Port      int    // e.g. 24224
	TagPrefix string // common prefix for every tag posted by this service
	Async     bool
	Timeout   time.Duration
}

// NewClient creates a Fluent Bit client.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, fmt.Errorf("fluentd tag prefix is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	logger, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
		Async:      cfg.Async,
		Timeout:    timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluentd logger: %w", err)
	}

	// There is no ping: a created client does not guarantee a live connection.
	// Delivery errors surface on the first Post.
	return logger, nil
}
