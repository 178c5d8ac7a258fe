package commands

import (
	"context"
	"errors"
	"time"

	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// SubmitOrderEventResult reports the committed outcome of an event submission.
// Duplicate submissions are reported as successful with Duplicate set, so
// retrying producers converge on the same response.
type SubmitOrderEventResult struct {
	Status                order.Status
	EstimatedDeliveryTime time.Time
	EstimateSeconds       int
	Duplicate             bool
}

// SubmitOrderEventCommandHandler is the single write path for order lifecycle
// events. It serializes processing per order, resolves routing distances,
// runs the event through the state machine, persists the outcome, and pushes
// the new estimate to live subscribers after commit.
type SubmitOrderEventCommandHandler struct {
	uowFactory  UoWFactory
	geo         ports.GeoDistanceProvider
	cache       ports.PositionCache
	broadcaster ports.Broadcaster
	settings    EstimationSettings
	clock       Clock

	locks *LockRegistry
}

// NewSubmitOrderEventCommandHandler creates the event ingestion handler.
// locks must be the order lock registry shared with every other handler that
// mutates tracks, so one order is never written from two paths at once.
func NewSubmitOrderEventCommandHandler(
	uowFactory UoWFactory,
	geo ports.GeoDistanceProvider,
	cache ports.PositionCache,
	broadcaster ports.Broadcaster,
	settings EstimationSettings,
	clock Clock,
	locks *LockRegistry,
) SubmitOrderEventCommandHandler {
	return SubmitOrderEventCommandHandler{
		uowFactory:  uowFactory,
		geo:         geo,
		cache:       cache,
		broadcaster: broadcaster,
		settings:    settings,
		clock:       clock,
		locks:       locks,
	}
}

// Handle processes one lifecycle event. Events for the same order are applied
// strictly one at a time; events for different orders proceed in parallel.
//
// A duplicate event is not an error: the handler returns the current
// committed estimate with Duplicate set. All other rejections surface as the
// typed domain errors from the order package.
func (h *SubmitOrderEventCommandHandler) Handle(
	ctx context.Context,
	cmd SubmitOrderEventCommand,
) (SubmitOrderEventResult, error) {
	if err := cmd.Validate(); err != nil {
		return SubmitOrderEventResult{}, err
	}

	key := cmd.OrderID().String()
	h.locks.Lock(key)
	defer h.locks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return SubmitOrderEventResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	track, err := uow.TrackRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return SubmitOrderEventResult{}, err
	}

	ev := cmd.Event()
	in := h.recalcInput(ctx, track, ev)

	result, err := track.Apply(ev, in)
	if err != nil {
		if errors.Is(err, order.ErrDuplicateEvent) {
			return SubmitOrderEventResult{
				Status:                track.Status(),
				EstimatedDeliveryTime: track.EstimatedDeliveryTime(),
				Duplicate:             true,
			}, nil
		}
		return SubmitOrderEventResult{}, err
	}

	if err = h.syncCourier(ctx, uow, track, ev.Kind()); err != nil {
		return SubmitOrderEventResult{}, err
	}

	if err = uow.TrackRepository().Update(ctx, track); err != nil {
		return SubmitOrderEventResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return SubmitOrderEventResult{}, err
	}

	h.broadcaster.BroadcastETA(ports.ETAUpdate{
		OrderID:               track.ID(),
		RestaurantID:          track.RestaurantID(),
		Status:                track.Status(),
		EventKind:             ev.Kind(),
		EstimatedDeliveryTime: result.EstimatedDeliveryTime,
		EstimateSeconds:       result.EstimateSeconds,
		OccurredAt:            ev.Timestamp(),
	})

	return SubmitOrderEventResult{
		Status:                track.Status(),
		EstimatedDeliveryTime: result.EstimatedDeliveryTime,
		EstimateSeconds:       result.EstimateSeconds,
	}, nil
}

// recalcInput resolves the distances and courier position the event needs.
// Routing failures degrade to unresolved distances; the state machine then
// keeps the last committed leg durations instead of failing the event.
func (h *SubmitOrderEventCommandHandler) recalcInput(
	ctx context.Context,
	track *order.Track,
	ev order.Event,
) order.RecalcInput {
	in := order.RecalcInput{
		PickupDistanceMeters:   -1,
		DeliveryDistanceMeters: -1,
		Profile:                h.settings.Profile,
		Now:                    h.clock(),
		Config:                 h.settings.Config,
	}

	courierPos := h.courierPosition(ctx, track, ev)
	in.CourierPosition = courierPos

	switch ev.Kind() {
	case order.EventRestaurantAccepted:
		if d, err := h.geo.RouteDistanceMeters(
			ctx, track.RestaurantLocation(), track.CustomerLocation()); err == nil {
			in.DeliveryDistanceMeters = d
		}

	case order.EventRiderAssigned:
		if courierPos != nil {
			if d, err := h.geo.RouteDistanceMeters(
				ctx, courierPos.Point(), track.RestaurantLocation()); err == nil {
				in.PickupDistanceMeters = d
			}
		}

	case order.EventRiderStartedDelivery:
		from := track.RestaurantLocation()
		if courierPos != nil {
			from = courierPos.Point()
		}
		if d, err := h.geo.RouteDistanceMeters(ctx, from, track.CustomerLocation()); err == nil {
			in.DeliveryDistanceMeters = d
		}

	case order.EventRiderReachedRestaurant, order.EventFoodNotReady,
		order.EventTrafficDetected, order.EventRiderNearby,
		order.EventDelivered, order.EventCancelled:
		// No routing needed.
	}

	return in
}

// courierPosition reads the courier's cached position, preferring the courier
// the event itself carries (rider_assigned) over the one on record.
func (h *SubmitOrderEventCommandHandler) courierPosition(
	ctx context.Context,
	track *order.Track,
	ev order.Event,
) *kernel.Position {
	courierID := track.CourierID()
	if raw, ok := ev.Metadata(order.MetadataCourierID); ok {
		if parsed, err := kernel.UUIDFromString(raw); err == nil {
			courierID = &parsed
		}
	}
	if courierID == nil {
		return nil
	}

	position, _, err := h.cache.GetLastPosition(ctx, *courierID)
	if err != nil {
		return nil
	}
	return position
}

// syncCourier keeps the courier aggregate's delivery set aligned with the
// track: assignment adds the order, terminal events release it. A courier
// unknown to the store is registered on first assignment.
func (h *SubmitOrderEventCommandHandler) syncCourier(
	ctx context.Context,
	uow UoW,
	track *order.Track,
	kind order.EventKind,
) error {
	courierID := track.CourierID()
	if courierID == nil {
		return nil
	}

	switch kind {
	case order.EventRiderAssigned:
		repo := uow.CourierRepository()
		aggregate, err := repo.Get(ctx, *courierID)
		if err != nil {
			if !errors.Is(err, errs.ErrObjectNotFound) {
				return err
			}
			aggregate, err = courier.NewCourier(*courierID)
			if err != nil {
				return err
			}
			if err = aggregate.AssignOrder(track.ID()); err != nil {
				return err
			}
			return repo.Add(ctx, aggregate)
		}
		if err = aggregate.AssignOrder(track.ID()); err != nil {
			return err
		}
		return repo.Update(ctx, aggregate)

	case order.EventDelivered, order.EventCancelled:
		repo := uow.CourierRepository()
		aggregate, err := repo.Get(ctx, *courierID)
		if err != nil {
			if errors.Is(err, errs.ErrObjectNotFound) {
				return nil
			}
			return err
		}
		if err = aggregate.ReleaseOrder(track.ID()); err != nil {
			return err
		}
		return repo.Update(ctx, aggregate)

	case order.EventRestaurantAccepted, order.EventRiderReachedRestaurant,
		order.EventFoodNotReady, order.EventRiderStartedDelivery,
		order.EventTrafficDetected, order.EventRiderNearby:
	}

	return nil
}
