package loader

import "time"

// Default tuning values. Exposed as named constants so tests and
// callers can reason about the schedule instead of chasing literals.
const (
	// DefaultPageSize is the number of entries requested per folder
	// listing page.
	DefaultPageSize = 100

	// DefaultStatusRetries is how many additional representation
	// listings are issued after the first reports pending/processing.
	DefaultStatusRetries = 3

	// DefaultStatusRetryDelay is multiplied by the attempt number
	// (1..DefaultStatusRetries) between listings — linear backoff,
	// no jitter.
	DefaultStatusRetryDelay = 1500 * time.Millisecond

	// DefaultEmptyRetries is how many full resolve→fetch cycles are
	// re-run when the fetched text is empty or whitespace-only.
	DefaultEmptyRetries = 2

	// DefaultEmptyRetryDelay is multiplied by the attempt number
	// (1..DefaultEmptyRetries) between cycles.
	DefaultEmptyRetryDelay = 1000 * time.Millisecond
)

// Config tunes the retrieval engine. The zero value of any field means
// "use the default", so Config{} behaves like DefaultConfig().
type Config struct {
	PageSize         int
	StatusRetries    int
	StatusRetryDelay time.Duration
	EmptyRetries     int
	EmptyRetryDelay  time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		PageSize:         DefaultPageSize,
		StatusRetries:    DefaultStatusRetries,
		StatusRetryDelay: DefaultStatusRetryDelay,
		EmptyRetries:     DefaultEmptyRetries,
		EmptyRetryDelay:  DefaultEmptyRetryDelay,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig. Negative
// retry counts are honored as "no retries" by the loops themselves.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.PageSize == 0 {
		c.PageSize = d.PageSize
	}

	if c.StatusRetries == 0 {
		c.StatusRetries = d.StatusRetries
	}

	if c.StatusRetryDelay == 0 {
		c.StatusRetryDelay = d.StatusRetryDelay
	}

	if c.EmptyRetries == 0 {
		c.EmptyRetries = d.EmptyRetries
	}

	if c.EmptyRetryDelay == 0 {
		c.EmptyRetryDelay = d.EmptyRetryDelay
	}

	return c
}
