package queries

import (
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/guard"
)

var ErrGetOrderEventsQueryIsNotConstructed = errors.New(
	"GetOrderEventsQuery must be created via NewGetOrderEventsQuery constructor",
)

// GetOrderEventsQuery retrieves the full applied event log for an order,
// including per-event metadata. Used by support tooling to reconstruct what
// happened to a delivery.
type GetOrderEventsQuery struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderEventsQuery creates an event log query for the order.
func NewGetOrderEventsQuery(orderID kernel.UUID) (GetOrderEventsQuery, error) {
	q := GetOrderEventsQuery{guard: guard.NewConstructorGuard()}

	if err := q.setOrderID(orderID); err != nil {
		return GetOrderEventsQuery{}, err
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderEventsQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderEventsQueryIsNotConstructed)
}

// OrderID returns the order being queried.
func (q GetOrderEventsQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q *GetOrderEventsQuery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	q.orderID = orderID
	return nil
}

// OrderEventResponse is one applied event with its metadata.
type OrderEventResponse struct {
	Kind                  order.EventKind
	OccurredAt            time.Time
	EstimatedDeliveryTime time.Time
	Metadata              map[string]string
}
