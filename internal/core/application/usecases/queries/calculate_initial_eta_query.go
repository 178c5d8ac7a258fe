package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

var ErrCalculateInitialETAQueryIsNotConstructed = errors.New(
	"CalculateInitialETAQuery must be created via NewCalculateInitialETAQuery constructor",
)

// CalculateInitialETAQuery previews a delivery estimate before any order
// exists: restaurant and customer coordinates plus an optional quoted prep
// time. Stateless; nothing is stored.
type CalculateInitialETAQuery struct { //nolint:recvcheck //using for validation
	restaurantLocation kernel.GeoPoint
	customerLocation   kernel.GeoPoint
	prepSeconds        int

	guard guard.ConstructorGuard
}

// NewCalculateInitialETAQuery creates a preview query. A zero prepSeconds
// selects the configured default; negative values are rejected.
func NewCalculateInitialETAQuery(
	restaurantLocation kernel.GeoPoint,
	customerLocation kernel.GeoPoint,
	prepSeconds int,
) (CalculateInitialETAQuery, error) {
	q := CalculateInitialETAQuery{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		q.setRestaurantLocation(restaurantLocation),
		q.setCustomerLocation(customerLocation),
		q.setPrepSeconds(prepSeconds),
	); err != nil {
		return CalculateInitialETAQuery{}, err
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q CalculateInitialETAQuery) Validate() error {
	return q.guard.Validate(ErrCalculateInitialETAQueryIsNotConstructed)
}

// RestaurantLocation returns the pickup coordinates.
func (q CalculateInitialETAQuery) RestaurantLocation() kernel.GeoPoint {
	return q.restaurantLocation
}

// CustomerLocation returns the drop-off coordinates.
func (q CalculateInitialETAQuery) CustomerLocation() kernel.GeoPoint {
	return q.customerLocation
}

// PrepSeconds returns the quoted prep time, zero meaning "use the default".
func (q CalculateInitialETAQuery) PrepSeconds() int {
	return q.prepSeconds
}

func (q *CalculateInitialETAQuery) setRestaurantLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	q.restaurantLocation = point
	return nil
}

func (q *CalculateInitialETAQuery) setCustomerLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	q.customerLocation = point
	return nil
}

func (q *CalculateInitialETAQuery) setPrepSeconds(prepSeconds int) error {
	if prepSeconds < 0 {
		return errs.NewValueIsOutOfRangeError("prepSeconds", prepSeconds, 0, "unbounded")
	}
	q.prepSeconds = prepSeconds
	return nil
}

// CalculateInitialETAQueryResponse is the previewed estimate.
type CalculateInitialETAQueryResponse struct {
	EstimateSeconds       int
	EstimatedDeliveryTime time.Time
}
