package services

import (
	"math"
)

// DefaultTimeOfDayFactor applies no rush-hour correction.
const DefaultTimeOfDayFactor = 1.0

// SpeedProfile describes the assumed courier travel speed. The time-of-day
// factor scales travel time to account for predictable congestion patterns
// (1.0 = free flow, 1.4 = evening rush).
type SpeedProfile struct {
	MetersPerSecond float64
	TimeOfDayFactor float64
}

// Distances holds the resolved trip legs in meters. A negative value means
// the leg is not part of the estimate.
type Distances struct {
	PickupMeters   float64
	DeliveryMeters float64
}

// DelayBuffers holds the accumulated non-travel components of an estimate,
// all in seconds.
type DelayBuffers struct {
	PrepSeconds    int
	FoodDelay      int
	TrafficPenalty int
}

// Estimate computes an ETA in seconds from resolved distances, a speed
// profile, and accumulated delay buffers. Pure and deterministic: no I/O,
// no shared state.
//
// Travel time is distance divided by speed, scaled by the time-of-day
// factor and rounded up to whole seconds. Buffers are added as-is.
func Estimate(d Distances, profile SpeedProfile, buffers DelayBuffers) int {
	total := LegSeconds(d.PickupMeters, profile) + LegSeconds(d.DeliveryMeters, profile)
	total += buffers.PrepSeconds + buffers.FoodDelay + buffers.TrafficPenalty

	if total < 0 {
		return 0
	}
	return total
}

// LegSeconds computes the travel time for a single leg in seconds.
// Returns 0 for a negative distance (leg not resolved) or a non-positive speed.
func LegSeconds(distanceMeters float64, profile SpeedProfile) int {
	if distanceMeters <= 0 || profile.MetersPerSecond <= 0 {
		return 0
	}

	factor := profile.TimeOfDayFactor
	if factor <= 0 {
		factor = DefaultTimeOfDayFactor
	}

	return int(math.Ceil(distanceMeters / profile.MetersPerSecond * factor))
}
