package commands

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/guard"
)

var ErrSubmitOrderEventCommandIsNotConstructed = errors.New(
	"SubmitOrderEventCommand must be created via NewSubmitOrderEventCommand constructor",
)

// SubmitOrderEventCommand represents one lifecycle event submitted for an
// order. The event kind, target order, and timestamp are validated at
// construction; unknown kinds never reach the state machine.
type SubmitOrderEventCommand struct { //nolint:recvcheck //using for validation
	event order.Event

	guard guard.ConstructorGuard
}

// NewSubmitOrderEventCommand creates a command from the raw event fields.
// Returns an error for unrecognized kinds, zero identifiers, or zero
// timestamps.
func NewSubmitOrderEventCommand(
	kind order.EventKind,
	orderID kernel.UUID,
	timestamp time.Time,
	metadata map[string]string,
) (SubmitOrderEventCommand, error) {
	event, err := order.NewEvent(kind, orderID, timestamp, metadata)
	if err != nil {
		return SubmitOrderEventCommand{}, err
	}

	return SubmitOrderEventCommand{
		event: event,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitOrderEventCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderEventCommandIsNotConstructed)
}

// Event returns the validated lifecycle event.
func (c SubmitOrderEventCommand) Event() order.Event {
	return c.event
}

// OrderID returns the order the event targets.
func (c SubmitOrderEventCommand) OrderID() kernel.UUID {
	return c.event.OrderID()
}
