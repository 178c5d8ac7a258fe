// Package realtime implements the in-process subscription registry: named
// broadcast groups, non-blocking fan-out to subscriber channels, and the
// snapshot delivered on join. Transport adapters (WebSocket) sit on top and
// only move messages between a subscription channel and a connection.
package realtime

import (
	"tracking/internal/core/domain/model/kernel"
)

// GroupKey names one broadcast group. Keys are typed strings so an order ID
// and a courier ID with the same UUID land in different groups.
type GroupKey string

// OrderGroup is the group receiving a single order's ETA and position updates.
func OrderGroup(orderID kernel.UUID) GroupKey {
	return GroupKey("order:" + orderID.String())
}

// CourierGroup is the group receiving one courier's position stream.
func CourierGroup(courierID kernel.UUID) GroupKey {
	return GroupKey("courier:" + courierID.String())
}

// RestaurantGroup is the group receiving ETA updates for every order of one
// restaurant.
func RestaurantGroup(restaurantID kernel.UUID) GroupKey {
	return GroupKey("restaurant:" + restaurantID.String())
}
