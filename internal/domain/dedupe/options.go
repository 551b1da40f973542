package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*memory)

// WithMaxSize bounds the number of keys kept in memory. A bound of zero
// or less disables eviction.
func WithMaxSize(maxSize int) Option {
	return func(d *memory) {
		d.maxSize = maxSize
	}
}
