package kernel

import (
	"errors"
	"time"

	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

// Valid bounds for a compass heading in degrees.
const (
	HeadingMin = 0.0
	HeadingMax = 360.0
)

// ErrPositionIsNotConstructed is returned when using a Position that was not
// created through NewPosition.
var ErrPositionIsNotConstructed = errs.NewValueIsRequiredError(
	"position must be created via NewPosition constructor")

// Position is an immutable value object describing where something was at a
// moment in time: a coordinate pair, a compass heading, and the timestamp the
// fix was taken. It is the unit carried by courier position updates and stored
// as the last-known position on a tracking record.
type Position struct { //nolint:recvcheck //using for validation
	point      GeoPoint
	heading    float64
	recordedAt time.Time
	guard      guard.ConstructorGuard
}

// NewPosition creates a Position from a constructed GeoPoint, a heading in
// [0, 360] degrees, and a non-zero timestamp.
func NewPosition(point GeoPoint, heading float64, recordedAt time.Time) (Position, error) {
	p := Position{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setPoint(point),
		p.setHeading(heading),
		p.setRecordedAt(recordedAt),
	); err != nil {
		return Position{}, err
	}

	return p, nil
}

// Validate checks that the Position was created through NewPosition.
func (p Position) Validate() error {
	return p.guard.Validate(ErrPositionIsNotConstructed)
}

// Point returns the coordinate pair of the fix.
func (p Position) Point() GeoPoint {
	return p.point
}

// Heading returns the compass heading in degrees.
func (p Position) Heading() float64 {
	return p.heading
}

// RecordedAt returns the timestamp the fix was taken.
func (p Position) RecordedAt() time.Time {
	return p.recordedAt
}

func (p *Position) setPoint(point GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	p.point = point
	return nil
}

func (p *Position) setHeading(heading float64) error {
	if heading < HeadingMin || heading > HeadingMax {
		return errs.NewValueIsOutOfRangeError("heading", heading, HeadingMin, HeadingMax)
	}
	p.heading = heading
	return nil
}

func (p *Position) setRecordedAt(recordedAt time.Time) error {
	if recordedAt.IsZero() {
		return errs.NewValueIsRequiredError("recordedAt")
	}
	p.recordedAt = recordedAt
	return nil
}
