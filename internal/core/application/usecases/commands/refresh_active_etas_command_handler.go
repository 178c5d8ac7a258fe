package commands

import (
	"context"
	"log/slog"

	"tracking/internal/core/domain/model/kernel"
)

// RefreshActiveETAsResult summarizes one sweep.
type RefreshActiveETAsResult struct {
	Refreshed int
	Changed   int
	Failed    int
}

// RefreshActiveETAsCommandHandler runs the estimate refresh across all
// active orders. Each order refreshes in its own transaction; one failing
// order does not stop the sweep.
type RefreshActiveETAsCommandHandler struct {
	uowFactory TrackUoWFactory
	recalc     *RecalculateETACommandHandler
	logger     *slog.Logger
}

// NewRefreshActiveETAsCommandHandler creates the sweep handler on top of the
// single-order recalculation handler.
func NewRefreshActiveETAsCommandHandler(
	uowFactory TrackUoWFactory,
	recalc *RecalculateETACommandHandler,
	logger *slog.Logger,
) RefreshActiveETAsCommandHandler {
	return RefreshActiveETAsCommandHandler{
		uowFactory: uowFactory,
		recalc:     recalc,
		logger:     logger.With("component", "eta-refresh"),
	}
}

// Handle enumerates active orders and refreshes each estimate.
func (h *RefreshActiveETAsCommandHandler) Handle(
	ctx context.Context,
	cmd RefreshActiveETAsCommand,
) (RefreshActiveETAsResult, error) {
	if err := cmd.Validate(); err != nil {
		return RefreshActiveETAsResult{}, err
	}

	orderIDs, err := h.activeOrderIDs(ctx)
	if err != nil {
		return RefreshActiveETAsResult{}, err
	}

	var result RefreshActiveETAsResult
	for _, orderID := range orderIDs {
		recalcCmd, err := NewRecalculateETACommand(orderID)
		if err != nil {
			result.Failed++
			continue
		}

		recalcResult, err := h.recalc.Handle(ctx, recalcCmd)
		if err != nil {
			result.Failed++
			h.logger.ErrorContext(ctx, "estimate refresh failed",
				"order_id", orderID.String(),
				"error", err)
			continue
		}

		result.Refreshed++
		if recalcResult.Changed {
			result.Changed++
		}
	}

	return result, nil
}

// activeOrderIDs snapshots the IDs of all active orders in a short read-only
// transaction. The refresh itself re-reads each track, so an order reaching
// a terminal state between the snapshot and its refresh is harmless.
func (h *RefreshActiveETAsCommandHandler) activeOrderIDs(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	tracks, err := uow.TrackRepository().GetAllActive(ctx)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]kernel.UUID, 0, len(tracks))
	for _, track := range tracks {
		orderIDs = append(orderIDs, track.ID())
	}
	return orderIDs, nil
}
