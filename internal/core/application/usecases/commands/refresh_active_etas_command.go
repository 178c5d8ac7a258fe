package commands

import (
	"errors"

	"tracking/internal/pkg/guard"
)

var ErrRefreshActiveETAsCommandIsNotConstructed = errors.New(
	"RefreshActiveETAsCommand must be created via NewRefreshActiveETAsCommand constructor",
)

// RefreshActiveETAsCommand triggers an estimate refresh sweep over every
// active order. Issued on a schedule so traffic decay and courier movement
// reach subscribers between lifecycle events.
type RefreshActiveETAsCommand struct {
	guard guard.ConstructorGuard
}

// NewRefreshActiveETAsCommand creates the sweep command.
func NewRefreshActiveETAsCommand() RefreshActiveETAsCommand {
	return RefreshActiveETAsCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c RefreshActiveETAsCommand) Validate() error {
	return c.guard.Validate(ErrRefreshActiveETAsCommandIsNotConstructed)
}
