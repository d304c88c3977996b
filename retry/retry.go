// Package retry holds the scheduling primitives the forger's polling and
// backoff loops are built from. It keeps no state and offers no
// cancellation: a started delay always runs to completion.
package retry

import "time"

// maxBackoff caps the per-attempt delay.
const maxBackoff = 60 * time.Second

// Delay blocks the calling goroutine for d. Non-positive durations return
// immediately.
func Delay(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// Backoff returns the delay before retrying attempt (1-based): one second
// per prior attempt, capped at 60s.
func Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	d := time.Duration(attempt-1) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
