package relay

import "time"

const (
	DefaultMaxRetries   = 5
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxDelay     = 60 * time.Second
	DefaultTimeout      = 10 * time.Second
)

// Backoff returns min(initial * 2^n, max)
func Backoff(n int, initial, max time.Duration) time.Duration {
	if n < 0 {
		n = 0
	}
	d := initial
	for i := 0; i < n; i++ {
		if d >= max {
			return max
		}
		d *= 2
	}
	if d > max {
		return max
	}
	return d
}
