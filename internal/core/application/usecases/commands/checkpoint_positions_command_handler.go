package commands

import (
	"context"
	"errors"
	"log/slog"

	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// CheckpointPositionsCommandHandler persists cached courier positions.
// For every courier carrying an active order it advances the courier
// aggregate's sequence watermark and stamps the position as the last known
// position on each of the courier's tracks.
type CheckpointPositionsCommandHandler struct {
	uowFactory UoWFactory
	cache      ports.PositionCache
	logger     *slog.Logger
}

// NewCheckpointPositionsCommandHandler creates the checkpoint handler.
func NewCheckpointPositionsCommandHandler(
	uowFactory UoWFactory,
	cache ports.PositionCache,
	logger *slog.Logger,
) CheckpointPositionsCommandHandler {
	return CheckpointPositionsCommandHandler{
		uowFactory: uowFactory,
		cache:      cache,
		logger:     logger.With("component", "position-checkpoint"),
	}
}

// Handle runs one checkpoint pass in a single transaction. A courier whose
// cached tick is older than the persisted watermark is skipped; per-courier
// failures are logged and do not abort the pass.
func (h *CheckpointPositionsCommandHandler) Handle(
	ctx context.Context,
	cmd CheckpointPositionsCommand,
) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	tracks, err := uow.TrackRepository().GetAllActive(ctx)
	if err != nil {
		return err
	}

	byCourier := make(map[kernel.UUID][]*order.Track)
	for _, track := range tracks {
		if courierID := track.CourierID(); courierID != nil {
			byCourier[*courierID] = append(byCourier[*courierID], track)
		}
	}

	for courierID, courierTracks := range byCourier {
		if err = h.checkpointCourier(ctx, uow, courierID, courierTracks); err != nil {
			h.logger.Error("checkpoint failed for courier",
				"courier_id", courierID.String(), "error", err)
		}
	}

	return uow.Commit(ctx)
}

func (h *CheckpointPositionsCommandHandler) checkpointCourier(
	ctx context.Context,
	uow UoW,
	courierID kernel.UUID,
	tracks []*order.Track,
) error {
	position, sequence, err := h.cache.GetLastPosition(ctx, courierID)
	if err != nil {
		return err
	}
	if position == nil {
		return nil
	}

	aggregate, err := uow.CourierRepository().Get(ctx, courierID)
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
		aggregate, err = courier.NewCourier(courierID)
		if err != nil {
			return err
		}
		if err = aggregate.ApplyPosition(sequence, *position); err != nil {
			return err
		}
		if err = uow.CourierRepository().Add(ctx, aggregate); err != nil {
			return err
		}
	} else {
		err = aggregate.ApplyPosition(sequence, *position)
		if errors.Is(err, courier.ErrStaleSequence) {
			return nil
		}
		if err != nil {
			return err
		}
		if err = uow.CourierRepository().Update(ctx, aggregate); err != nil {
			return err
		}
	}

	for _, track := range tracks {
		if err = track.RecordPosition(*position); err != nil {
			return err
		}
		if err = uow.TrackRepository().Update(ctx, track); err != nil {
			return err
		}
	}

	return nil
}
