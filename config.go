package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Logger defaults to slog.Default() at the time of use.
	Logger *slog.Logger `ignored:"true"`
	Trace  Trace        `ignored:"true"`
	// GuardConcurrency bounds the CanClose checks a close strategy runs at
	// once. Zero means unbounded.
	GuardConcurrency int `envconfig:"GUARD_CONCURRENCY" default:"0"`
	// GuardTimeout bounds each CanClose check. A check that times out counts
	// as unanswered. Zero disables the timeout.
	GuardTimeout time.Duration `envconfig:"GUARD_TIMEOUT" default:"0s"`
}

var DefaultConfig = Config{}

// ConfigFromEnv overlays LIFECYCLE_* environment variables onto DefaultConfig.
func ConfigFromEnv() (Config, error) {
	config := DefaultConfig
	if err := envconfig.Process("lifecycle", &config); err != nil {
		return DefaultConfig, fmt.Errorf("failed to load lifecycle config: %w", err)
	}
	if config.GuardConcurrency < 0 {
		return DefaultConfig, fmt.Errorf("invalid LIFECYCLE_GUARD_CONCURRENCY %d", config.GuardConcurrency)
	}
	return config, nil
}

func (config Config) logger() *slog.Logger {
	if config.Logger != nil {
		return config.Logger
	}
	return slog.Default()
}

func (config Config) trace(ctx context.Context, step string, subjects ...any) func(...any) {
	if config.Trace == nil {
		return func(...any) {}
	}
	return config.Trace(ctx, step, subjects...)
}
