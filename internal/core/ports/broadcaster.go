package ports

import (
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
)

// ETAUpdate is the payload pushed to order subscribers after an accepted
// lifecycle event or recalculation.
type ETAUpdate struct {
	OrderID               kernel.UUID
	RestaurantID          kernel.UUID
	Status                order.Status
	EventKind             order.EventKind
	EstimatedDeliveryTime time.Time
	EstimateSeconds       int
	OccurredAt            time.Time
}

// PositionUpdate is the payload pushed to subscribers when a courier position
// tick is accepted by the relay.
type PositionUpdate struct {
	CourierID kernel.UUID
	OrderIDs  []kernel.UUID
	Position  kernel.Position
	Sequence  int64
}

// Broadcaster fans updates out to live subscribers. Implementations must
// never block the caller: a slow subscriber loses updates, not the publisher.
type Broadcaster interface {
	// BroadcastETA delivers an estimate change to every subscriber of the
	// order's group.
	BroadcastETA(update ETAUpdate)

	// BroadcastPosition delivers a courier position to the subscribers of the
	// courier's group and of every order the courier is carrying.
	BroadcastPosition(update PositionUpdate)
}
