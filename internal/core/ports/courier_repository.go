// Package ports defines the contracts between the application core and
// infrastructure: repositories, the transaction boundary, routing, caching,
// and the realtime broadcast surface. Adapters implement these interfaces,
// keeping the core free of infrastructure imports.
package ports

import (
	"context"

	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *courier.Courier) error

	// Update persists changes to an existing courier aggregate, including its
	// last position, sequence watermark, and assigned orders.
	Update(ctx context.Context, aggregate *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	// Returns errs.ObjectNotFoundError when the courier is unknown.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)
}
