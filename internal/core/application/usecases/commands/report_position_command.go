package commands

import (
	"errors"
	"math"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var ErrReportPositionCommandIsNotConstructed = errors.New(
	"ReportPositionCommand must be created via NewReportPositionCommand constructor",
)

// ReportPositionCommand carries one courier position tick: coordinates,
// heading, the time of the fix, and the source sequence number used to drop
// out-of-order arrivals.
type ReportPositionCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	sequence  int64
	position  kernel.Position

	guard guard.ConstructorGuard
}

// NewReportPositionCommand creates a position tick command. The position must
// be a constructed kernel.Position; malformed coordinates are rejected before
// reaching the relay. Sequence numbers start at 1 so the relay's cached
// watermark zero value always means "no tick applied yet".
func NewReportPositionCommand(
	courierID kernel.UUID,
	sequence int64,
	position kernel.Position,
) (ReportPositionCommand, error) {
	cmd := ReportPositionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCourierID(courierID),
		cmd.setPosition(position),
		cmd.setSequence(sequence),
	); err != nil {
		return ReportPositionCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportPositionCommand) Validate() error {
	return c.guard.Validate(ErrReportPositionCommandIsNotConstructed)
}

// CourierID returns the reporting courier.
func (c ReportPositionCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Sequence returns the source sequence number of the tick.
func (c ReportPositionCommand) Sequence() int64 {
	return c.sequence
}

// Position returns the reported position.
func (c ReportPositionCommand) Position() kernel.Position {
	return c.position
}

func (c *ReportPositionCommand) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	c.courierID = courierID
	return nil
}

func (c *ReportPositionCommand) setSequence(sequence int64) error {
	if sequence < 1 {
		return errs.NewValueIsOutOfRangeError("sequence", sequence, 1, int64(math.MaxInt64))
	}
	c.sequence = sequence
	return nil
}

func (c *ReportPositionCommand) setPosition(position kernel.Position) error {
	if err := position.Validate(); err != nil {
		return err
	}
	c.position = position
	return nil
}
