package geo

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
)

// DefaultCircuityFactor scales great-circle distance toward road distance.
// Streets rarely run straight, so the raw haversine figure understates the
// distance a courier actually rides.
const DefaultCircuityFactor = 1.3

// HaversineProvider estimates road distance from the great-circle distance
// scaled by a circuity factor. It never fails on valid coordinates, which
// makes it the fallback of last resort.
type HaversineProvider struct {
	circuity float64
}

// NewHaversineProvider creates a provider with the given circuity factor.
// A factor below 1.0 is replaced with DefaultCircuityFactor.
func NewHaversineProvider(circuity float64) *HaversineProvider {
	if circuity < 1.0 {
		circuity = DefaultCircuityFactor
	}
	return &HaversineProvider{circuity: circuity}
}

// RouteDistanceMeters returns the scaled great-circle distance.
func (p *HaversineProvider) RouteDistanceMeters(
	_ context.Context,
	from kernel.GeoPoint,
	to kernel.GeoPoint,
) (float64, error) {
	distance, err := from.DistanceMeters(to)
	if err != nil {
		return 0, err
	}
	return distance * p.circuity, nil
}
