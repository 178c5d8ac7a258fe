package order

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/services"
)

// Domain errors for tracking operations. All are definitive, typed rejections;
// none of them should ever crash the service.
var (
	// ErrTrackIsNotConstructed is returned when a Track bypassed its constructors.
	ErrTrackIsNotConstructed = errors.New("Track must be created via NewTrack or RestoreTrack")
	// ErrTrackIsTerminal is returned when an event targets an order that has
	// already reached Delivered or Cancelled.
	ErrTrackIsTerminal = errors.New("order is in a terminal state")
	// ErrInvalidTransition is returned when an event is not applicable to the
	// order's current state. Out-of-order events are rejected, not reordered.
	ErrInvalidTransition = errors.New("event is not applicable to the current order state")
	// ErrDuplicateEvent is returned when an event with the same kind and
	// timestamp was already applied (idempotence window).
	ErrDuplicateEvent = errors.New("event was already applied")
	// ErrCourierIDIsMissing is returned when a rider_assigned event carries no
	// usable courier identifier.
	ErrCourierIDIsMissing = errors.New("rider_assigned event requires courier_id metadata")
)

// HistoryEntry records one applied lifecycle event and the estimate it produced.
type HistoryEntry struct {
	Kind              EventKind
	Timestamp         time.Time
	ResultingEstimate time.Time
	Metadata          map[string]string
}

// RecalcConfig carries the tunable estimation knobs, all in seconds except the
// decay window. Values come from service configuration, not from the aggregate.
type RecalcConfig struct {
	// DefaultPrepSeconds is assumed kitchen time when the restaurant gives none.
	DefaultPrepSeconds int
	// FoodDelaySeconds is added to the estimate per food_not_ready event.
	FoodDelaySeconds int
	// TrafficPenaltySeconds is the default penalty per traffic_detected event.
	TrafficPenaltySeconds int
	// TrafficDecayWindow is the window over which a traffic penalty decays
	// linearly to zero.
	TrafficDecayWindow time.Duration
	// NearbyFloorSeconds is the minimum estimate once the rider is nearby.
	NearbyFloorSeconds int
}

// RecalcInput carries everything Apply needs that involves I/O to resolve:
// leg distances from the routing collaborator, the courier's position, the
// speed profile, and the clock. The aggregate itself stays pure.
type RecalcInput struct {
	// PickupDistanceMeters is courier→restaurant; negative when not resolved.
	PickupDistanceMeters float64
	// DeliveryDistanceMeters is restaurant→customer (or courier→customer once
	// the delivery leg has started); negative when not resolved.
	DeliveryDistanceMeters float64
	// CourierPosition, when present, is stamped as the last known position.
	CourierPosition *kernel.Position
	// Profile is the assumed travel speed.
	Profile services.SpeedProfile
	// Now anchors the produced estimatedDeliveryTime and traffic decay.
	Now time.Time
	// Config holds the estimation knobs.
	Config RecalcConfig
}

// ApplyResult reports the outcome of an accepted event.
type ApplyResult struct {
	EstimatedDeliveryTime time.Time
	EstimateSeconds       int
	Changed               bool
	StatusChanged         bool
}

// Track is the Order Tracking Record: the aggregate root owning per-order ETA
// state. It is mutated exclusively through Apply (and Recalculate); callers
// must serialize those calls per order.
//
// Invariants:
//   - status only moves forward in the delivery flow; terminal states reject
//     all further events
//   - version increments on every accepted mutation, never on rejected ones
//   - history grows by exactly one entry per accepted event
type Track struct {
	id                 kernel.UUID
	restaurantID       kernel.UUID
	courierID          *kernel.UUID
	restaurantLocation kernel.GeoPoint
	customerLocation   kernel.GeoPoint

	status                Status
	estimatedDeliveryTime time.Time
	baseEstimateSeconds   int

	prepSeconds           int
	pickupLegSeconds      int
	deliveryLegSeconds    int
	foodDelaySeconds      int
	trafficPenaltySeconds int
	trafficAppliedAt      time.Time
	riderNearby           bool

	lastKnownPosition *kernel.Position
	history           []HistoryEntry
	applied           map[string]struct{}
	version           int64

	isConstructed bool
}

// NewTrack starts tracking an order. Created when the order's event stream
// begins, in Pending status with no estimate yet.
func NewTrack(
	id kernel.UUID,
	restaurantID kernel.UUID,
	restaurantLocation kernel.GeoPoint,
	customerLocation kernel.GeoPoint,
) (*Track, error) {
	track := &Track{
		status:        Pending,
		applied:       make(map[string]struct{}),
		isConstructed: true,
	}

	if err := errors.Join(
		track.setID(id),
		track.setRestaurantID(restaurantID),
		track.setRestaurantLocation(restaurantLocation),
		track.setCustomerLocation(customerLocation),
	); err != nil {
		return nil, err
	}

	return track, nil
}

// RestoreTrack reconstructs a Track from persistence. Unlike NewTrack it
// accepts the full mutable state, including history, and rebuilds the
// idempotence index from it.
func RestoreTrack(
	id kernel.UUID,
	restaurantID kernel.UUID,
	courierID *kernel.UUID,
	restaurantLocation kernel.GeoPoint,
	customerLocation kernel.GeoPoint,
	status Status,
	estimatedDeliveryTime time.Time,
	baseEstimateSeconds int,
	estimateState EstimateState,
	lastKnownPosition *kernel.Position,
	history []HistoryEntry,
	version int64,
) (*Track, error) {
	track := &Track{
		isConstructed: true,
	}

	if err := errors.Join(
		track.setID(id),
		track.setRestaurantID(restaurantID),
		track.setRestaurantLocation(restaurantLocation),
		track.setCustomerLocation(customerLocation),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return nil, err
		}
		track.courierID = courierID
	}

	track.status = status
	track.estimatedDeliveryTime = estimatedDeliveryTime
	track.baseEstimateSeconds = baseEstimateSeconds
	track.prepSeconds = estimateState.PrepSeconds
	track.pickupLegSeconds = estimateState.PickupLegSeconds
	track.deliveryLegSeconds = estimateState.DeliveryLegSeconds
	track.foodDelaySeconds = estimateState.FoodDelaySeconds
	track.trafficPenaltySeconds = estimateState.TrafficPenaltySeconds
	track.trafficAppliedAt = estimateState.TrafficAppliedAt
	track.riderNearby = estimateState.RiderNearby
	track.lastKnownPosition = lastKnownPosition
	track.history = history
	track.version = version

	track.applied = make(map[string]struct{}, len(history))
	for _, entry := range history {
		track.applied[fmt.Sprintf("%s@%d", entry.Kind, entry.Timestamp.UnixNano())] = struct{}{}
	}

	return track, nil
}

// EstimateState bundles the internal estimate components for persistence
// round trips. It has no behavior.
type EstimateState struct {
	PrepSeconds           int
	PickupLegSeconds      int
	DeliveryLegSeconds    int
	FoodDelaySeconds      int
	TrafficPenaltySeconds int
	TrafficAppliedAt      time.Time
	RiderNearby           bool
}

// Validate ensures the Track was created through a constructor.
func (t *Track) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTrackIsNotConstructed
	}
	return nil
}

// ID returns the order identifier.
func (t *Track) ID() kernel.UUID { return t.id }

// RestaurantID returns the restaurant identifier.
func (t *Track) RestaurantID() kernel.UUID { return t.restaurantID }

// CourierID returns the assigned courier, or nil before assignment.
func (t *Track) CourierID() *kernel.UUID { return t.courierID }

// RestaurantLocation returns the pickup coordinates.
func (t *Track) RestaurantLocation() kernel.GeoPoint { return t.restaurantLocation }

// CustomerLocation returns the drop-off coordinates.
func (t *Track) CustomerLocation() kernel.GeoPoint { return t.customerLocation }

// Status returns the current lifecycle status.
func (t *Track) Status() Status { return t.status }

// EstimatedDeliveryTime returns the last committed estimate.
func (t *Track) EstimatedDeliveryTime() time.Time { return t.estimatedDeliveryTime }

// BaseEstimateSeconds returns the leg-derived portion of the estimate,
// excluding delay buffers and traffic penalties.
func (t *Track) BaseEstimateSeconds() int { return t.baseEstimateSeconds }

// TrafficAdjustmentSeconds returns the undecayed remainder of the traffic
// penalty as of now.
func (t *Track) TrafficAdjustmentSeconds(now time.Time, window time.Duration) int {
	return services.DecayedPenaltySeconds(t.trafficPenaltySeconds, t.trafficAppliedAt, now, window)
}

// RiderNearby reports whether the proximity flag has been set.
func (t *Track) RiderNearby() bool { return t.riderNearby }

// LastKnownPosition returns the last courier position stamped on the record,
// or nil if none was recorded yet.
func (t *Track) LastKnownPosition() *kernel.Position { return t.lastKnownPosition }

// History returns the applied events in application order.
func (t *Track) History() []HistoryEntry { return t.history }

// Version returns the monotonic mutation counter.
func (t *Track) Version() int64 { return t.version }

// EstimateStateSnapshot returns the internal estimate components for persistence.
func (t *Track) EstimateStateSnapshot() EstimateState {
	return EstimateState{
		PrepSeconds:           t.prepSeconds,
		PickupLegSeconds:      t.pickupLegSeconds,
		DeliveryLegSeconds:    t.deliveryLegSeconds,
		FoodDelaySeconds:      t.foodDelaySeconds,
		TrafficPenaltySeconds: t.trafficPenaltySeconds,
		TrafficAppliedAt:      t.trafficAppliedAt,
		RiderNearby:           t.riderNearby,
	}
}

// kindAllowedFrom defines which statuses each event kind may arrive in.
// This is deliberately stricter than the forward-only rank check: an event
// arriving before its prerequisites is rejected, never queued.
func kindAllowedFrom(kind EventKind, status Status) bool {
	allowed := map[EventKind][]Status{
		EventRestaurantAccepted:     {Pending},
		EventRiderAssigned:          {RestaurantAccepted, Preparing, FoodReady},
		EventRiderReachedRestaurant: {RiderAssigned},
		EventFoodNotReady:           {RestaurantAccepted, Preparing, RiderAssigned, RiderAtRestaurant},
		EventRiderStartedDelivery:   {RiderAtRestaurant},
		EventTrafficDetected:        {RiderAssigned, RiderAtRestaurant, OutForDelivery},
		EventRiderNearby:            {OutForDelivery},
		EventDelivered:              {OutForDelivery},
		EventCancelled: {
			Pending, RestaurantAccepted, Preparing, FoodReady,
			RiderAssigned, RiderAtRestaurant, OutForDelivery,
		},
	}

	for _, s := range allowed[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// Apply runs one lifecycle event through the state machine: it validates
// applicability, executes the per-kind recalculation policy, appends to
// history, and bumps the version. Callers must serialize Apply per order.
//
// Returns ErrTrackIsTerminal, ErrDuplicateEvent, or ErrInvalidTransition as
// typed rejections; the aggregate is left untouched on any error.
func (t *Track) Apply(ev Event, in RecalcInput) (ApplyResult, error) {
	if err := t.Validate(); err != nil {
		return ApplyResult{}, err
	}
	if err := ev.Validate(); err != nil {
		return ApplyResult{}, err
	}
	if !ev.OrderID().IsEqual(t.id) {
		return ApplyResult{}, fmt.Errorf("%w: event targets order %s", ErrInvalidTransition, ev.OrderID())
	}

	if t.status.IsTerminal() {
		return ApplyResult{}, fmt.Errorf("%w: %s", ErrTrackIsTerminal, t.status)
	}

	if _, seen := t.applied[ev.dedupKey()]; seen {
		return ApplyResult{}, fmt.Errorf("%w: %s at %s", ErrDuplicateEvent, ev.Kind(), ev.Timestamp())
	}

	if !kindAllowedFrom(ev.Kind(), t.status) {
		return ApplyResult{}, fmt.Errorf("%w: %s in status %s", ErrInvalidTransition, ev.Kind(), t.status)
	}

	nextStatus := t.status
	statusChanged := false
	if target, ok := ev.Kind().targetStatus(); ok {
		transitioned, err := t.status.TransitionTo(target)
		if err != nil {
			return ApplyResult{}, fmt.Errorf("%w: %s", ErrInvalidTransition, err)
		}
		nextStatus = transitioned
		statusChanged = true
	}

	// State-changing validation passed; from here the event is accepted and
	// the mutation must complete as a whole.
	if err := t.recalcForKind(ev, in); err != nil {
		return ApplyResult{}, err
	}

	previousEstimate := t.estimatedDeliveryTime
	t.status = nextStatus

	if in.CourierPosition != nil {
		t.lastKnownPosition = in.CourierPosition
	}

	estimateSeconds := t.remainingSeconds(in.Now, in.Config)
	if t.status.IsTerminal() {
		t.estimatedDeliveryTime = ev.Timestamp()
		estimateSeconds = 0
	} else {
		t.estimatedDeliveryTime = in.Now.Add(time.Duration(estimateSeconds) * time.Second)
	}

	t.history = append(t.history, HistoryEntry{
		Kind:              ev.Kind(),
		Timestamp:         ev.Timestamp(),
		ResultingEstimate: t.estimatedDeliveryTime,
		Metadata:          ev.MetadataCopy(),
	})
	t.applied[ev.dedupKey()] = struct{}{}
	t.version++

	return ApplyResult{
		EstimatedDeliveryTime: t.estimatedDeliveryTime,
		EstimateSeconds:       estimateSeconds,
		Changed:               !t.estimatedDeliveryTime.Equal(previousEstimate),
		StatusChanged:         statusChanged,
	}, nil
}

// recalcForKind executes the per-kind recalculation policy against the
// estimate components. Called only after all applicability checks passed.
func (t *Track) recalcForKind(ev Event, in RecalcInput) error {
	switch ev.Kind() {
	case EventRestaurantAccepted:
		t.prepSeconds = in.Config.DefaultPrepSeconds
		if raw, ok := ev.Metadata(MetadataPrepTimeSeconds); ok {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
				t.prepSeconds = parsed
			}
		}
		t.deliveryLegSeconds = services.LegSeconds(in.DeliveryDistanceMeters, in.Profile)

	case EventRiderAssigned:
		raw, ok := ev.Metadata(MetadataCourierID)
		if !ok {
			return ErrCourierIDIsMissing
		}
		courierID, err := kernel.UUIDFromString(raw)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrCourierIDIsMissing, err)
		}
		t.courierID = &courierID
		t.pickupLegSeconds = services.LegSeconds(in.PickupDistanceMeters, in.Profile)

	case EventRiderReachedRestaurant:
		// Pickup leg is complete; its latency is frozen into history. Any
		// traffic penalty applied to that leg no longer affects the estimate.
		t.pickupLegSeconds = 0
		t.prepSeconds = 0
		t.clearTraffic()

	case EventFoodNotReady:
		t.foodDelaySeconds += in.Config.FoodDelaySeconds

	case EventRiderStartedDelivery:
		if in.DeliveryDistanceMeters >= 0 {
			t.deliveryLegSeconds = services.LegSeconds(in.DeliveryDistanceMeters, in.Profile)
		}
		t.prepSeconds = 0
		t.pickupLegSeconds = 0
		t.clearTraffic()

	case EventTrafficDetected:
		penalty := in.Config.TrafficPenaltySeconds
		if raw, ok := ev.Metadata(MetadataPenaltySeconds); ok {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
				penalty = parsed
			}
		}
		t.trafficPenaltySeconds = penalty
		t.trafficAppliedAt = ev.Timestamp()

	case EventRiderNearby:
		t.riderNearby = true

	case EventDelivered, EventCancelled:
		// Terminal; remaining components are irrelevant.
	}

	return nil
}

func (t *Track) clearTraffic() {
	t.trafficPenaltySeconds = 0
	t.trafficAppliedAt = time.Time{}
}

// remainingSeconds computes the decay-aware remaining seconds for the current
// status. The status field must already reflect the applied transition.
func (t *Track) remainingSeconds(now time.Time, cfg RecalcConfig) int {
	if t.status.IsTerminal() || t.status == Pending {
		return 0
	}

	traffic := services.DecayedPenaltySeconds(
		t.trafficPenaltySeconds, t.trafficAppliedAt, now, cfg.TrafficDecayWindow)

	base := 0
	switch t.status {
	case RestaurantAccepted, Preparing, FoodReady:
		base = t.prepSeconds + t.deliveryLegSeconds
	case RiderAssigned:
		base = t.prepSeconds + t.pickupLegSeconds + t.deliveryLegSeconds
	case RiderAtRestaurant, OutForDelivery:
		base = t.deliveryLegSeconds
	case Unknown, Pending, Delivered, Cancelled:
		base = 0
	}
	t.baseEstimateSeconds = base

	total := base + t.foodDelaySeconds + traffic
	if t.riderNearby && total < cfg.NearbyFloorSeconds {
		total = cfg.NearbyFloorSeconds
	}
	return total
}

// Recalculate re-runs the estimate against the latest known inputs without a
// new lifecycle event (manual retry path and traffic decay sweep). Leg
// distances are only overwritten when resolved (non-negative).
func (t *Track) Recalculate(in RecalcInput) (ApplyResult, error) {
	if err := t.Validate(); err != nil {
		return ApplyResult{}, err
	}
	if t.status.IsTerminal() {
		return ApplyResult{}, fmt.Errorf("%w: %s", ErrTrackIsTerminal, t.status)
	}

	if in.PickupDistanceMeters >= 0 && t.status == RiderAssigned {
		t.pickupLegSeconds = services.LegSeconds(in.PickupDistanceMeters, in.Profile)
	}
	if in.DeliveryDistanceMeters >= 0 {
		t.deliveryLegSeconds = services.LegSeconds(in.DeliveryDistanceMeters, in.Profile)
	}
	if in.CourierPosition != nil {
		t.lastKnownPosition = in.CourierPosition
	}

	previousEstimate := t.estimatedDeliveryTime
	estimateSeconds := t.remainingSeconds(in.Now, in.Config)
	if t.status != Pending {
		t.estimatedDeliveryTime = in.Now.Add(time.Duration(estimateSeconds) * time.Second)
	}
	t.version++

	return ApplyResult{
		EstimatedDeliveryTime: t.estimatedDeliveryTime,
		EstimateSeconds:       estimateSeconds,
		Changed:               !t.estimatedDeliveryTime.Equal(previousEstimate),
		StatusChanged:         false,
	}, nil
}

// RecordPosition stamps a courier position as the last known position on the
// record. Used at persisted checkpoint boundaries; routine ticks stay in the
// relay and are not persisted here.
func (t *Track) RecordPosition(position kernel.Position) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := position.Validate(); err != nil {
		return err
	}
	if t.status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTrackIsTerminal, t.status)
	}

	t.lastKnownPosition = &position
	return nil
}

func (t *Track) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Track) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.restaurantID = id
	return nil
}

func (t *Track) setRestaurantLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	t.restaurantLocation = point
	return nil
}

func (t *Track) setCustomerLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	t.customerLocation = point
	return nil
}
