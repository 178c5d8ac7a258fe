package realtime

import (
	"tracking/internal/core/ports"
)

// Broadcaster adapts the registry to the ports.Broadcaster contract used by
// the command handlers. ETA updates reach the order's group and the
// restaurant's group; position updates reach the courier's group and the
// group of every order the courier is carrying.
type Broadcaster struct {
	registry *Registry
}

// NewBroadcaster wraps a registry for use by the application core.
func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// BroadcastETA fans an estimate change out to order and restaurant subscribers.
func (b *Broadcaster) BroadcastETA(update ports.ETAUpdate) {
	msg := etaMessage(update, clockNow())
	b.registry.Publish(OrderGroup(update.OrderID), msg)
	if err := update.RestaurantID.Validate(); err == nil {
		b.registry.Publish(RestaurantGroup(update.RestaurantID), msg)
	}
}

// BroadcastPosition fans a courier position out to the courier's subscribers
// and to each carried order's subscribers, tagged with that order's ID.
func (b *Broadcaster) BroadcastPosition(update ports.PositionUpdate) {
	msg := positionMessage(update, clockNow())
	b.registry.Publish(CourierGroup(update.CourierID), msg)

	for _, orderID := range update.OrderIDs {
		perOrder := msg
		perOrder.OrderID = orderID.String()
		b.registry.Publish(OrderGroup(orderID), perOrder)
	}
}
