package commands

import (
	"errors"

	"tracking/internal/pkg/guard"
)

var ErrCheckpointPositionsCommandIsNotConstructed = errors.New(
	"CheckpointPositionsCommand must be created via NewCheckpointPositionsCommand constructor",
)

// CheckpointPositionsCommand flushes cached courier positions into the
// relational store. Issued periodically by the checkpoint job; routine ticks
// never touch the database on their own.
type CheckpointPositionsCommand struct {
	guard guard.ConstructorGuard
}

// NewCheckpointPositionsCommand creates a parameterless checkpoint command.
func NewCheckpointPositionsCommand() CheckpointPositionsCommand {
	return CheckpointPositionsCommand{guard: guard.NewConstructorGuard()}
}

// Validate ensures the command was created through the constructor.
func (c CheckpointPositionsCommand) Validate() error {
	return c.guard.Validate(ErrCheckpointPositionsCommandIsNotConstructed)
}
