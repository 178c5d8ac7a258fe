package commands

import (
	"context"

	"tracking/internal/core/domain/model/order"
)

// StartTrackingCommandHandler opens tracking records. Creates the record in
// Pending status with an empty history; the first lifecycle event produces
// the first estimate.
type StartTrackingCommandHandler struct {
	uowFactory TrackUoWFactory
}

// NewStartTrackingCommandHandler creates a handler for starting order tracking.
func NewStartTrackingCommandHandler(uowFactory TrackUoWFactory) StartTrackingCommandHandler {
	return StartTrackingCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the start tracking command inside a transaction.
func (h *StartTrackingCommandHandler) Handle(ctx context.Context, cmd StartTrackingCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	track, err := order.NewTrack(
		cmd.OrderID(),
		cmd.RestaurantID(),
		cmd.RestaurantLocation(),
		cmd.CustomerLocation(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TrackRepository().Add(ctx, track); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
