package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
)

// GeoDistanceProvider resolves the travel distance between two points, in
// meters. Implementations call an external routing service and must respect
// the context deadline; the straight-line fallback implements the same
// interface so callers cannot tell the difference.
type GeoDistanceProvider interface {
	// RouteDistanceMeters returns the travel distance from one point to
	// another. Implementations return an error on upstream failure; callers
	// decide whether to fall back or keep the last committed estimate.
	RouteDistanceMeters(ctx context.Context, from, to kernel.GeoPoint) (float64, error)
}
