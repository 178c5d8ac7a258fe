package order

import (
	"fmt"

	"tracking/internal/pkg/errs"
)

// Status represents the lifecycle state of a tracked order.
// Transitions are constrained to move forward through the delivery flow:
//
//	Pending < RestaurantAccepted < Preparing < FoodReady < RiderAssigned
//	        < RiderAtRestaurant < OutForDelivery < Delivered
//
// Delivered and Cancelled are terminal; no transition leaves them.
// Cancelled is reachable from any non-terminal status.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when tracking begins, before the
	// restaurant has confirmed the order.
	Pending

	// RestaurantAccepted indicates the restaurant confirmed the order.
	RestaurantAccepted

	// Preparing indicates the kitchen is working on the order.
	Preparing

	// FoodReady indicates the order is packed and waiting for pickup.
	FoodReady

	// RiderAssigned indicates a courier accepted the delivery.
	RiderAssigned

	// RiderAtRestaurant indicates the courier arrived at the restaurant.
	RiderAtRestaurant

	// OutForDelivery indicates the courier left with the order.
	OutForDelivery

	// Delivered is the terminal success status.
	Delivered

	// Cancelled is the terminal failure status.
	Cancelled
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:            "Unknown",
		Pending:            "Pending",
		RestaurantAccepted: "RestaurantAccepted",
		Preparing:          "Preparing",
		FoodReady:          "FoodReady",
		RiderAssigned:      "RiderAssigned",
		RiderAtRestaurant:  "RiderAtRestaurant",
		OutForDelivery:     "OutForDelivery",
		Delivered:          "Delivered",
		Cancelled:          "Cancelled",
	}
}

// rank returns the position of the status in the delivery flow.
// Cancelled has no rank; it is reachable from any non-terminal status.
func (s Status) rank() int {
	//nolint:exhaustive // Cancelled is intentionally outside the linear flow
	ranks := map[Status]int{
		Pending:            1,
		RestaurantAccepted: 2,
		Preparing:          3,
		FoodReady:          4,
		RiderAssigned:      5,
		RiderAtRestaurant:  6,
		OutForDelivery:     7,
		Delivered:          8,
	}
	return ranks[s]
}

// Validate checks if the Status value is one of the defined statuses.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transition is permitted from s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// TransitionTo validates a transition from s to next and returns next.
//
// Rules enforced:
//   - no transition may leave a terminal status
//   - Cancelled is reachable from any non-terminal status
//   - all other transitions must move strictly forward in the delivery flow
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}

	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is terminal and cannot transition to %s", s.String(), next.String()),
		)
	}

	if next == Cancelled {
		return Cancelled, nil
	}

	if next.rank() <= s.rank() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s cannot move backwards to %s", s.String(), next.String()),
		)
	}

	return next, nil
}
