// Package progress provides utility functions for progress calculation and tracking.
package progress

import (
	"time"
)

const (
	percentageMultiplier = 100 // Multiplier to convert decimal to percentage
)

// Percent returns floor(100*index/total). The result is undefined (false) when the total is
// unknown or zero.
func Percent(index, total int64) (int, bool) {
	if total <= 0 || index < 0 {
		return 0, false
	}

	if index >= total {
		return percentageMultiplier, true
	}

	// index < total here, so index*100 only overflows for totals near the int64 limit.
	if index > (1<<63-1)/percentageMultiplier {
		return int(float64(index) / float64(total) * percentageMultiplier), true
	}

	return int(index * percentageMultiplier / total), true
}

// EstimateRemaining linearly extrapolates the time left: (elapsed/index)*total - elapsed.
// It is undefined (false) until at least one candidate has been tried or when the total is unknown.
func EstimateRemaining(elapsed time.Duration, index, total int64) (time.Duration, bool) {
	if index <= 0 || total <= 0 {
		return 0, false
	}

	perCandidate := elapsed.Seconds() / float64(index)
	remaining := perCandidate*float64(total) - elapsed.Seconds()
	if remaining < 0 {
		remaining = 0
	}

	return time.Duration(remaining * float64(time.Second)), true
}
