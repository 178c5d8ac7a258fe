package courier

import (
	"errors"
	"fmt"

	"tracking/internal/core/domain/model/kernel"
)

// Domain errors for courier operations.
var (
	// ErrCourierIsNotConstructed is returned when using an improperly
	// initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier or RestoreCourier")
	// ErrStaleSequence is returned when a position update carries a source
	// sequence at or below the last applied one. Stale ticks are dropped and
	// logged, never surfaced as hard failures.
	ErrStaleSequence = errors.New("position update is stale")
)

// Courier is the aggregate tracking a courier's live position stream.
//
// It owns the last-known position and the monotonic source sequence used to
// reject out-of-transit-order ticks, plus the set of orders the courier is
// currently delivering (the fan-out targets for position broadcasts).
//
// ApplyPosition must be serialized per courier; different couriers proceed
// fully in parallel.
type Courier struct {
	id             kernel.UUID
	lastPosition   *kernel.Position
	lastSequence   int64
	assignedOrders []kernel.UUID

	isConstructed bool
}

// NewCourier registers a courier with no position history.
func NewCourier(id kernel.UUID) (*Courier, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return &Courier{
		id:            id,
		isConstructed: true,
	}, nil
}

// RestoreCourier reconstructs a courier aggregate from persistence.
func RestoreCourier(
	id kernel.UUID,
	lastPosition *kernel.Position,
	lastSequence int64,
	assignedOrders []kernel.UUID,
) (*Courier, error) {
	c, err := NewCourier(id)
	if err != nil {
		return nil, err
	}

	if lastPosition != nil {
		if err := lastPosition.Validate(); err != nil {
			return nil, err
		}
		c.lastPosition = lastPosition
	}
	c.lastSequence = lastSequence
	c.assignedOrders = assignedOrders

	return c, nil
}

// Validate ensures the Courier was created through a constructor.
func (c *Courier) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCourierIsNotConstructed
	}
	return nil
}

// ID returns the courier identifier.
func (c *Courier) ID() kernel.UUID { return c.id }

// LastPosition returns the last applied position, or nil before the first tick.
// The visible last-known position never regresses for a live courier.
func (c *Courier) LastPosition() *kernel.Position { return c.lastPosition }

// LastSequence returns the highest source sequence applied so far.
func (c *Courier) LastSequence() int64 { return c.lastSequence }

// AssignedOrders returns the orders currently carried by this courier.
func (c *Courier) AssignedOrders() []kernel.UUID { return c.assignedOrders }

// ApplyPosition applies one position tick. A tick whose sequence is at or
// below the last applied sequence is rejected with ErrStaleSequence and
// leaves the aggregate untouched.
func (c *Courier) ApplyPosition(sequence int64, position kernel.Position) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := position.Validate(); err != nil {
		return err
	}

	if sequence <= c.lastSequence {
		return fmt.Errorf("%w: sequence %d is not greater than %d", ErrStaleSequence, sequence, c.lastSequence)
	}

	c.lastSequence = sequence
	c.lastPosition = &position
	return nil
}

// AssignOrder adds an order to the courier's delivery set. Idempotent:
// assigning an already-assigned order is a no-op.
func (c *Courier) AssignOrder(orderID kernel.UUID) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	for _, existing := range c.assignedOrders {
		if existing.IsEqual(orderID) {
			return nil
		}
	}

	c.assignedOrders = append(c.assignedOrders, orderID)
	return nil
}

// ReleaseOrder removes an order from the delivery set once it reaches a
// terminal state. Releasing an unassigned order is a no-op.
func (c *Courier) ReleaseOrder(orderID kernel.UUID) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	for i, existing := range c.assignedOrders {
		if existing.IsEqual(orderID) {
			c.assignedOrders = append(c.assignedOrders[:i], c.assignedOrders[i+1:]...)
			return nil
		}
	}
	return nil
}
