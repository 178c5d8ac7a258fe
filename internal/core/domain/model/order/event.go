package order

import (
	"errors"
	"fmt"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"
	"tracking/internal/pkg/guard"
)

// EventKind identifies one member of the lifecycle event union.
// The wire names are the values accepted at the ingress boundary.
type EventKind string

const (
	EventRestaurantAccepted     EventKind = "restaurant_accepted"
	EventRiderAssigned          EventKind = "rider_assigned"
	EventRiderReachedRestaurant EventKind = "rider_reached_restaurant"
	EventFoodNotReady           EventKind = "food_not_ready"
	EventRiderStartedDelivery   EventKind = "rider_started_delivery"
	EventTrafficDetected        EventKind = "traffic_detected"
	EventRiderNearby            EventKind = "rider_nearby"
	EventDelivered              EventKind = "delivered"
	EventCancelled              EventKind = "cancelled"
)

// Metadata keys recognized on specific event kinds.
const (
	// MetadataCourierID carries the assigned courier on rider_assigned events.
	MetadataCourierID = "courier_id"
	// MetadataPrepTimeSeconds optionally overrides the configured preparation
	// estimate on restaurant_accepted events.
	MetadataPrepTimeSeconds = "prep_time_seconds"
	// MetadataPenaltySeconds optionally overrides the configured traffic
	// penalty on traffic_detected events.
	MetadataPenaltySeconds = "penalty_seconds"
	// MetadataReason carries a free-form cancellation reason.
	MetadataReason = "reason"
)

// ErrEventIsNotConstructed is returned when an Event bypassed NewEvent.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent constructor")

// getEventKindStrings returns the set of valid kinds for validation.
func getEventKindStrings() map[EventKind]struct{} {
	return map[EventKind]struct{}{
		EventRestaurantAccepted:     {},
		EventRiderAssigned:          {},
		EventRiderReachedRestaurant: {},
		EventFoodNotReady:           {},
		EventRiderStartedDelivery:   {},
		EventTrafficDetected:        {},
		EventRiderNearby:            {},
		EventDelivered:              {},
		EventCancelled:              {},
	}
}

// Validate checks that the kind is a member of the union.
func (k EventKind) Validate() error {
	if _, ok := getEventKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("eventKind",
			fmt.Errorf("%q is not a recognized event kind", string(k)))
	}
	return nil
}

// targetStatus returns the status this kind moves the order to, or false for
// kinds that adjust the estimate without changing state (food_not_ready,
// traffic_detected, rider_nearby).
func (k EventKind) targetStatus() (Status, bool) {
	//nolint:exhaustive // estimate-only kinds intentionally have no target
	targets := map[EventKind]Status{
		EventRestaurantAccepted:     RestaurantAccepted,
		EventRiderAssigned:          RiderAssigned,
		EventRiderReachedRestaurant: RiderAtRestaurant,
		EventRiderStartedDelivery:   OutForDelivery,
		EventDelivered:              Delivered,
		EventCancelled:              Cancelled,
	}
	target, ok := targets[k]
	return target, ok
}

// Event is one validated member of the lifecycle event union. Events are
// immutable; the ingress boundary constructs them and the Track aggregate
// consumes them.
type Event struct { //nolint:recvcheck //using for validation
	kind      EventKind
	orderID   kernel.UUID
	timestamp time.Time
	metadata  map[string]string

	guard guard.ConstructorGuard
}

// NewEvent creates a validated lifecycle event. Kind must be a member of the
// union, orderID must be constructed, and timestamp must be non-zero.
// Metadata may be nil; it is copied to keep the event immutable.
func NewEvent(kind EventKind, orderID kernel.UUID, timestamp time.Time, metadata map[string]string) (Event, error) {
	ev := Event{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		ev.setKind(kind),
		ev.setOrderID(orderID),
		ev.setTimestamp(timestamp),
	); err != nil {
		return Event{}, err
	}

	if len(metadata) > 0 {
		ev.metadata = make(map[string]string, len(metadata))
		for key, value := range metadata {
			ev.metadata[key] = value
		}
	}

	return ev, nil
}

// Validate ensures the event was created through NewEvent.
func (e Event) Validate() error {
	return e.guard.Validate(ErrEventIsNotConstructed)
}

// Kind returns the event kind.
func (e Event) Kind() EventKind {
	return e.kind
}

// OrderID returns the order this event belongs to.
func (e Event) OrderID() kernel.UUID {
	return e.orderID
}

// Timestamp returns when the event occurred at its source.
func (e Event) Timestamp() time.Time {
	return e.timestamp
}

// Metadata returns the value for key and whether it was present.
func (e Event) Metadata(key string) (string, bool) {
	value, ok := e.metadata[key]
	return value, ok
}

// MetadataCopy returns a copy of all metadata for history persistence.
func (e Event) MetadataCopy() map[string]string {
	if len(e.metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.metadata))
	for key, value := range e.metadata {
		out[key] = value
	}
	return out
}

// dedupKey identifies an already-applied event within the idempotence window.
// Two submissions with equal kind and timestamp are the same event.
func (e Event) dedupKey() string {
	return fmt.Sprintf("%s@%d", e.kind, e.timestamp.UnixNano())
}

func (e *Event) setKind(kind EventKind) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	e.kind = kind
	return nil
}

func (e *Event) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	e.orderID = orderID
	return nil
}

func (e *Event) setTimestamp(timestamp time.Time) error {
	if timestamp.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	e.timestamp = timestamp
	return nil
}
