package commands

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/ports"
)

// RecalculateETAResult reports the refreshed estimate.
type RecalculateETAResult struct {
	Status                order.Status
	EstimatedDeliveryTime time.Time
	EstimateSeconds       int
	Changed               bool
}

// RecalculateETACommandHandler refreshes an order's estimate from the latest
// routing data and courier position.
type RecalculateETACommandHandler struct {
	uowFactory  TrackUoWFactory
	geo         ports.GeoDistanceProvider
	cache       ports.PositionCache
	broadcaster ports.Broadcaster
	settings    EstimationSettings
	clock       Clock

	locks *LockRegistry
}

// NewRecalculateETACommandHandler creates a handler for estimate refreshes.
// locks must be the order lock registry shared with event submission: a
// refresh does a read-modify-write of the track row, so without the shared
// lock a sweep or manual retry could clobber a concurrent lifecycle event.
func NewRecalculateETACommandHandler(
	uowFactory TrackUoWFactory,
	geo ports.GeoDistanceProvider,
	cache ports.PositionCache,
	broadcaster ports.Broadcaster,
	settings EstimationSettings,
	clock Clock,
	locks *LockRegistry,
) RecalculateETACommandHandler {
	return RecalculateETACommandHandler{
		uowFactory:  uowFactory,
		geo:         geo,
		cache:       cache,
		broadcaster: broadcaster,
		settings:    settings,
		clock:       clock,
		locks:       locks,
	}
}

// Handle refreshes the estimate inside a transaction and broadcasts the
// result when it changed.
func (h *RecalculateETACommandHandler) Handle(
	ctx context.Context,
	cmd RecalculateETACommand,
) (RecalculateETAResult, error) {
	if err := cmd.Validate(); err != nil {
		return RecalculateETAResult{}, err
	}

	key := cmd.OrderID().String()
	h.locks.Lock(key)
	defer h.locks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RecalculateETAResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	track, err := uow.TrackRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return RecalculateETAResult{}, err
	}

	result, err := track.Recalculate(h.recalcInput(ctx, track))
	if err != nil {
		return RecalculateETAResult{}, err
	}

	if err = uow.TrackRepository().Update(ctx, track); err != nil {
		return RecalculateETAResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RecalculateETAResult{}, err
	}

	if result.Changed {
		h.broadcaster.BroadcastETA(ports.ETAUpdate{
			OrderID:               track.ID(),
			RestaurantID:          track.RestaurantID(),
			Status:                track.Status(),
			EstimatedDeliveryTime: result.EstimatedDeliveryTime,
			EstimateSeconds:       result.EstimateSeconds,
			OccurredAt:            h.clock(),
		})
	}

	return RecalculateETAResult{
		Status:                track.Status(),
		EstimatedDeliveryTime: result.EstimatedDeliveryTime,
		EstimateSeconds:       result.EstimateSeconds,
		Changed:               result.Changed,
	}, nil
}

// recalcInput resolves the legs relevant to the order's current status.
func (h *RecalculateETACommandHandler) recalcInput(
	ctx context.Context,
	track *order.Track,
) order.RecalcInput {
	in := order.RecalcInput{
		PickupDistanceMeters:   -1,
		DeliveryDistanceMeters: -1,
		Profile:                h.settings.Profile,
		Now:                    h.clock(),
		Config:                 h.settings.Config,
	}

	var courierPos *kernel.Position
	if courierID := track.CourierID(); courierID != nil {
		if position, _, err := h.cache.GetLastPosition(ctx, *courierID); err == nil {
			courierPos = position
		}
	}
	in.CourierPosition = courierPos

	switch track.Status() {
	case order.RestaurantAccepted, order.Preparing, order.FoodReady:
		if d, err := h.geo.RouteDistanceMeters(
			ctx, track.RestaurantLocation(), track.CustomerLocation()); err == nil {
			in.DeliveryDistanceMeters = d
		}

	case order.RiderAssigned:
		if courierPos != nil {
			if d, err := h.geo.RouteDistanceMeters(
				ctx, courierPos.Point(), track.RestaurantLocation()); err == nil {
				in.PickupDistanceMeters = d
			}
		}
		if d, err := h.geo.RouteDistanceMeters(
			ctx, track.RestaurantLocation(), track.CustomerLocation()); err == nil {
			in.DeliveryDistanceMeters = d
		}

	case order.RiderAtRestaurant, order.OutForDelivery:
		from := track.RestaurantLocation()
		if track.Status() == order.OutForDelivery && courierPos != nil {
			from = courierPos.Point()
		}
		if d, err := h.geo.RouteDistanceMeters(ctx, from, track.CustomerLocation()); err == nil {
			in.DeliveryDistanceMeters = d
		}

	case order.Unknown, order.Pending, order.Delivered, order.Cancelled:
	}

	return in
}
