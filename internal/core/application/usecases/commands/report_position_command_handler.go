package commands

import (
	"context"
	"errors"
	"log/slog"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// ReportPositionResult reports the outcome of one position tick. A stale tick
// is dropped, not failed: the relay absorbs late arrivals so flaky courier
// connections never produce hard errors.
type ReportPositionResult struct {
	Applied bool
	Dropped bool
}

// ReportPositionCommandHandler is the hot path for courier position ticks.
// It gates ticks on a per-courier monotonic sequence, stores the accepted
// position in the fast cache, and fans it out to the courier's subscribers
// and to every order the courier is carrying. Nothing on this path touches
// the relational store.
type ReportPositionCommandHandler struct {
	cache       ports.PositionCache
	broadcaster ports.Broadcaster
	uowFactory  CourierUoWFactory
	logger      *slog.Logger

	locks *LockRegistry
}

// NewReportPositionCommandHandler creates the position relay handler.
// locks must be the courier lock registry shared by every intake (HTTP,
// WebSocket, Kafka): the sequence gate is a check-then-set on the cache, and
// only a lock spanning all intakes keeps a stale tick from overwriting a
// newer one that arrived on a different channel.
func NewReportPositionCommandHandler(
	cache ports.PositionCache,
	broadcaster ports.Broadcaster,
	uowFactory CourierUoWFactory,
	locks *LockRegistry,
	logger *slog.Logger,
) ReportPositionCommandHandler {
	return ReportPositionCommandHandler{
		cache:       cache,
		broadcaster: broadcaster,
		uowFactory:  uowFactory,
		logger:      logger.With("component", "location-relay"),
		locks:       locks,
	}
}

// Handle processes one tick. Ticks for the same courier are serialized;
// different couriers proceed fully in parallel. A tick whose sequence is at
// or below the cached watermark is logged and dropped.
func (h *ReportPositionCommandHandler) Handle(
	ctx context.Context,
	cmd ReportPositionCommand,
) (ReportPositionResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReportPositionResult{}, err
	}

	key := cmd.CourierID().String()
	h.locks.Lock(key)
	defer h.locks.Unlock(key)

	_, watermark, err := h.cache.GetLastPosition(ctx, cmd.CourierID())
	if err != nil {
		return ReportPositionResult{}, err
	}
	// Sequences start at 1, so a zero watermark means no tick applied yet
	// and an equal sequence is a replay.
	if cmd.Sequence() <= watermark {
		h.logger.Debug("dropping stale position tick",
			"courier_id", cmd.CourierID().String(),
			"sequence", cmd.Sequence(),
			"watermark", watermark)
		return ReportPositionResult{Dropped: true}, nil
	}

	if err = h.cache.SetLastPosition(ctx, cmd.CourierID(), cmd.Position(), cmd.Sequence()); err != nil {
		return ReportPositionResult{}, err
	}

	orderIDs, err := h.assignedOrders(ctx, cmd)
	if err != nil {
		return ReportPositionResult{}, err
	}

	h.broadcaster.BroadcastPosition(ports.PositionUpdate{
		CourierID: cmd.CourierID(),
		OrderIDs:  orderIDs,
		Position:  cmd.Position(),
		Sequence:  cmd.Sequence(),
	})

	return ReportPositionResult{Applied: true}, nil
}

// assignedOrders resolves the fan-out targets from the courier aggregate.
// An unknown courier simply has no order subscribers yet.
func (h *ReportPositionCommandHandler) assignedOrders(
	ctx context.Context,
	cmd ReportPositionCommand,
) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return aggregate.AssignedOrders(), nil
}
