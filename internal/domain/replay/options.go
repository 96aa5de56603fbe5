package replay

type settings struct {
	maxSize int
	onEvict func(id string)
}

// Option configures a Cache.
type Option func(*settings)

// WithMaxSize sets the maximum number of replies kept in memory.
// If maxSize > 0: bounded mode with oldest-first eviction.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(s *settings) {
		s.maxSize = maxSize
	}
}

// WithEvictHook registers a callback run for every evicted id while the cache lock is held.
func WithEvictHook(fn func(id string)) Option {
	return func(s *settings) {
		s.onEvict = fn
	}
}
