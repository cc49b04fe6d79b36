package anomaly

import "time"

// Default classification thresholds.
const (
	// DefaultLagThreshold is the exclusive bound above which positive
	// ingestion delay is flagged.
	DefaultLagThreshold = 60 * time.Second

	// highLagThreshold is the exclusive bound above which ingestion lag is
	// escalated from medium to high.
	highLagThreshold = 3600 * time.Second

	// DefaultOutOfOrderTolerance is how far a point's valid time may fall
	// behind the running maximum before it counts as out of order.
	DefaultOutOfOrderTolerance = 0 * time.Second
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithLagThreshold sets the exclusive ingestion-lag bound.
func WithLagThreshold(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.lagThreshold = d
		}
	}
}

// WithOutOfOrderTolerance sets how far behind the running valid-time maximum
// a point may fall before it is flagged. Zero flags any regression.
func WithOutOfOrderTolerance(d time.Duration) Option {
	return func(c *Classifier) {
		if d >= 0 {
			c.outOfOrderTolerance = d
		}
	}
}

// WithWorkers sets the fan-out for per-point rules. Those rules share no
// state, so they are safe to evaluate concurrently; the sequence rule always
// runs as a single ordered scan regardless of this setting.
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}
