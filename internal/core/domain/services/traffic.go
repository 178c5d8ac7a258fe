package services

import (
	"time"
)

// DecayedPenaltySeconds returns the remaining portion of a traffic penalty.
//
// The penalty decays linearly over the configured window starting at the
// moment it was applied: remaining = penalty * (1 - elapsed/window). It
// reaches zero at the end of the window and never goes negative. A
// non-positive window disables decay and returns the full penalty.
func DecayedPenaltySeconds(penaltySeconds int, appliedAt, now time.Time, window time.Duration) int {
	if penaltySeconds <= 0 {
		return 0
	}
	if window <= 0 {
		return penaltySeconds
	}

	elapsed := now.Sub(appliedAt)
	if elapsed <= 0 {
		return penaltySeconds
	}
	if elapsed >= window {
		return 0
	}

	remaining := float64(penaltySeconds) * (1 - float64(elapsed)/float64(window))
	return int(remaining)
}
