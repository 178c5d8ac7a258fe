package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var ErrStartTrackingCommandIsNotConstructed = errors.New(
	"StartTrackingCommand must be created via NewStartTrackingCommand constructor",
)

// StartTrackingCommand represents a request to open a tracking record for an
// order. Issued when the order's event stream begins, before any lifecycle
// event arrives.
type StartTrackingCommand struct { //nolint:recvcheck //using for validation
	orderID            kernel.UUID
	restaurantID       kernel.UUID
	restaurantLocation kernel.GeoPoint
	customerLocation   kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewStartTrackingCommand creates a command to start tracking an order.
// Both identifiers and both coordinate pairs must be valid.
func NewStartTrackingCommand(
	orderID kernel.UUID,
	restaurantID kernel.UUID,
	restaurantLocation kernel.GeoPoint,
	customerLocation kernel.GeoPoint,
) (StartTrackingCommand, error) {
	cmd := StartTrackingCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRestaurantID(restaurantID),
		cmd.setRestaurantLocation(restaurantLocation),
		cmd.setCustomerLocation(customerLocation),
	); err != nil {
		return StartTrackingCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c StartTrackingCommand) Validate() error {
	return c.guard.Validate(ErrStartTrackingCommandIsNotConstructed)
}

// OrderID returns the order to track.
func (c StartTrackingCommand) OrderID() kernel.UUID {
	return c.orderID
}

// RestaurantID returns the restaurant fulfilling the order.
func (c StartTrackingCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// RestaurantLocation returns the pickup coordinates.
func (c StartTrackingCommand) RestaurantLocation() kernel.GeoPoint {
	return c.restaurantLocation
}

// CustomerLocation returns the drop-off coordinates.
func (c StartTrackingCommand) CustomerLocation() kernel.GeoPoint {
	return c.customerLocation
}

func (c *StartTrackingCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *StartTrackingCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}
	c.restaurantID = restaurantID
	return nil
}

func (c *StartTrackingCommand) setRestaurantLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	c.restaurantLocation = point
	return nil
}

func (c *StartTrackingCommand) setCustomerLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	c.customerLocation = point
	return nil
}
