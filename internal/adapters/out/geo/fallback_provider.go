package geo

import (
	"context"
	"log/slog"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"
)

// FallbackProvider asks the primary provider first and falls back to the
// secondary when the primary fails. Fallback results are logged so a dead
// routing backend shows up in the logs rather than as quietly worse ETAs.
type FallbackProvider struct {
	primary   ports.GeoDistanceProvider
	secondary ports.GeoDistanceProvider
	logger    *slog.Logger
}

// NewFallbackProvider composes two distance providers.
func NewFallbackProvider(
	primary ports.GeoDistanceProvider,
	secondary ports.GeoDistanceProvider,
	logger *slog.Logger,
) *FallbackProvider {
	return &FallbackProvider{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With("component", "geo-fallback"),
	}
}

// RouteDistanceMeters resolves the distance through the primary provider,
// then the secondary. Context cancellation is not retried against the
// secondary since the caller has already given up.
func (p *FallbackProvider) RouteDistanceMeters(
	ctx context.Context,
	from kernel.GeoPoint,
	to kernel.GeoPoint,
) (float64, error) {
	distance, err := p.primary.RouteDistanceMeters(ctx, from, to)
	if err == nil {
		return distance, nil
	}
	if ctx.Err() != nil {
		return 0, err
	}

	p.logger.Warn("primary distance provider failed, using fallback",
		"error", err)

	return p.secondary.RouteDistanceMeters(ctx, from, to)
}
