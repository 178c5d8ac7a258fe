package queries

import (
	"context"
	"time"

	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
)

// CalculateInitialETAQueryHandler previews estimates without touching the
// store: one routing call plus the pure estimator.
type CalculateInitialETAQueryHandler struct {
	geo     ports.GeoDistanceProvider
	config  order.RecalcConfig
	profile services.SpeedProfile
	clock   func() time.Time
}

// NewCalculateInitialETAQueryHandler creates a preview handler.
func NewCalculateInitialETAQueryHandler(
	geo ports.GeoDistanceProvider,
	config order.RecalcConfig,
	profile services.SpeedProfile,
	clock func() time.Time,
) CalculateInitialETAQueryHandler {
	return CalculateInitialETAQueryHandler{
		geo:     geo,
		config:  config,
		profile: profile,
		clock:   clock,
	}
}

// Handle computes the preview: quoted (or default) prep time plus the travel
// time of the restaurant-to-customer leg.
func (h CalculateInitialETAQueryHandler) Handle(
	ctx context.Context,
	query CalculateInitialETAQuery,
) (CalculateInitialETAQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return CalculateInitialETAQueryResponse{}, err
	}

	distance, err := h.geo.RouteDistanceMeters(
		ctx, query.RestaurantLocation(), query.CustomerLocation())
	if err != nil {
		return CalculateInitialETAQueryResponse{}, err
	}

	prep := query.PrepSeconds()
	if prep == 0 {
		prep = h.config.DefaultPrepSeconds
	}

	seconds := services.Estimate(
		services.Distances{PickupMeters: -1, DeliveryMeters: distance},
		h.profile,
		services.DelayBuffers{PrepSeconds: prep},
	)

	return CalculateInitialETAQueryResponse{
		EstimateSeconds:       seconds,
		EstimatedDeliveryTime: h.clock().Add(time.Duration(seconds) * time.Second),
	}, nil
}
