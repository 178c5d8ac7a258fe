package commands

import (
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/guard"
)

var ErrRecalculateETACommandIsNotConstructed = errors.New(
	"RecalculateETACommand must be created via NewRecalculateETACommand constructor",
)

// RecalculateETACommand requests an estimate refresh for an order without a
// new lifecycle event. Used by the manual retry endpoint and by the periodic
// decay sweep.
type RecalculateETACommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRecalculateETACommand creates a recalculation command for the order.
func NewRecalculateETACommand(orderID kernel.UUID) (RecalculateETACommand, error) {
	cmd := RecalculateETACommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return RecalculateETACommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecalculateETACommand) Validate() error {
	return c.guard.Validate(ErrRecalculateETACommandIsNotConstructed)
}

// OrderID returns the order whose estimate should be refreshed.
func (c RecalculateETACommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *RecalculateETACommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}
