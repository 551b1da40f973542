package repository

import (
	"time"

	"github.com/entraide/matchd/internal/domain/dedupe"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithAlertDeduper replaces the alert content-key deduper.
func WithAlertDeduper(d dedupe.Deduper) Option {
	return func(s *MemoryStore) {
		if d != nil {
			s.alertKeys = d
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
