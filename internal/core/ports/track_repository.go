package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
)

// TrackRepository defines the persistence contract for order tracking records.
// Provides methods for storing, retrieving, and querying tracks by their
// lifecycle state.
type TrackRepository interface {
	// Add persists a new tracking record.
	// The track must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Track) error

	// Update persists changes to an existing tracking record, including its
	// event history and estimate components.
	Update(ctx context.Context, aggregate *order.Track) error

	// Get retrieves a tracking record by order identifier.
	// Returns errs.ObjectNotFoundError when no track exists for the order.
	Get(ctx context.Context, orderID kernel.UUID) (*order.Track, error)

	// GetAllActive retrieves all tracks that have not reached a terminal
	// state. Used by the traffic decay sweep and the position checkpoint job.
	GetAllActive(ctx context.Context) ([]*order.Track, error)

	// GetAllActiveByCourier retrieves the non-terminal tracks assigned to a
	// courier. Used to checkpoint the courier's position onto its orders.
	GetAllActiveByCourier(ctx context.Context, courierID kernel.UUID) ([]*order.Track, error)
}
