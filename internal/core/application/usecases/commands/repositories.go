// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// TrackRepoFactory provides access to the track repository within a transaction.
	TrackRepoFactory interface {
		TrackRepository() ports.TrackRepository
	}

	// CourierRepoFactory provides access to the courier repository within a transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// TrackUoW manages transactions for track-only operations.
	TrackUoW interface {
		TxManager
		TrackRepoFactory
	}

	// TrackUoWFactory creates new track unit of work instances.
	TrackUoWFactory interface {
		Create() TrackUoW
	}

	// CourierUoW manages transactions for courier-only operations.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	// CourierUoWFactory creates new courier unit of work instances.
	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// UoW manages transactions across both track and courier aggregates.
	// Used by commands that coordinate changes between the two, such as
	// rider assignment.
	UoW interface {
		TxManager
		CourierRepoFactory
		TrackRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// Clock supplies the current time to handlers. Injectable for deterministic
// tests; production wiring passes time.Now.
type Clock func() time.Time

// EstimationSettings bundles the tunable estimation knobs handed to every
// recalculating handler.
type EstimationSettings struct {
	Config  order.RecalcConfig
	Profile services.SpeedProfile
}
