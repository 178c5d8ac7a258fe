package ports

import (
	"context"

	"tracking/internal/core/domain/model/kernel"
)

// PositionCache is the fast-path store for courier last-known positions.
// Routine position ticks land here; only checkpointed positions reach the
// relational store.
type PositionCache interface {
	// SetLastPosition records the courier's most recent position.
	SetLastPosition(ctx context.Context, courierID kernel.UUID, position kernel.Position, sequence int64) error

	// GetLastPosition returns the courier's cached position and sequence.
	// Returns (nil, 0, nil) when nothing is cached for the courier.
	GetLastPosition(ctx context.Context, courierID kernel.UUID) (*kernel.Position, int64, error)
}
