// Package queries contains read-only operations in the CQRS architecture.
// Query handlers bypass the aggregates and read the store directly, shaping
// results for the API layer.
package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/guard"
)

var ErrGetLiveETAQueryIsNotConstructed = errors.New(
	"GetLiveETAQuery must be created via NewGetLiveETAQuery constructor",
)

// GetLiveETAQuery retrieves the current tracking snapshot for one order:
// status, estimate, and the last known courier position.
type GetLiveETAQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetLiveETAQuery creates a live snapshot query for the order.
func NewGetLiveETAQuery(orderID kernel.UUID) (GetLiveETAQuery, error) {
	q := GetLiveETAQuery{guard: guard.NewConstructorGuard()}

	if err := q.setOrderID(orderID); err != nil {
		return GetLiveETAQuery{}, err
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetLiveETAQuery) Validate() error {
	return q.guard.Validate(ErrGetLiveETAQueryIsNotConstructed)
}

// OrderID returns the order being queried.
func (q GetLiveETAQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q *GetLiveETAQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

// PositionResponse is a courier position in a query result.
type PositionResponse struct {
	Latitude   float64
	Longitude  float64
	Heading    float64
	RecordedAt time.Time
}

// GetLiveETAQueryResponse is the tracking snapshot returned to subscribers
// and to the polling endpoint.
type GetLiveETAQueryResponse struct {
	OrderID               kernel.UUID
	Status                order.Status
	EstimatedDeliveryTime time.Time
	RiderNearby           bool
	CourierID             *kernel.UUID
	LastKnownPosition     *PositionResponse
	Version               int64
}
