package dine

// Functional options for Engine construction, kept in a standalone file so
// every knob is discoverable at a glance.

import (
	"fmt"

	"github.com/tabletalk/tabletalk-go/internal/shardqueue"
)

// Option mutates the Engine during New().
type Option func(*Engine) error

// WithLocale sets the locale forwarded to the facts provider
// (default "en-US").
func WithLocale(locale string) Option {
	return func(e *Engine) error {
		if locale == "" {
			return fmt.Errorf("empty locale")
		}
		e.locale = locale
		return nil
	}
}

// WithExecutorConfig overrides the persistence executor tunables.
func WithExecutorConfig(cfg shardqueue.Config) Option {
	return func(e *Engine) error {
		e.exec = shardqueue.NewShardExecutor(cfg)
		return nil
	}
}

// WithSyncPersistence makes cache puts and conversation saves run inline on
// the calling goroutine. Deterministic, so preferred in tests; production
// callers keep the async executor so persistence never blocks the UI.
func WithSyncPersistence() Option {
	return func(e *Engine) error {
		e.exec = syncExecutor{}
		return nil
	}
}
