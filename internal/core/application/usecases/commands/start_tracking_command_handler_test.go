package commands_test

import (
	"errors"
	"testing"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewStartTrackingCommand(t *testing.T) {
	restaurant := kernel.NewUUID()

	t.Run("rejects_invalid_order_id", func(t *testing.T) {
		_, err := commands.NewStartTrackingCommand(kernel.UUID{}, restaurant,
			testGeoPoint(t, 55.75, 37.61), testGeoPoint(t, 55.76, 37.62))
		require.Error(t, err)
	})

	t.Run("creates_valid_command", func(t *testing.T) {
		cmd, err := commands.NewStartTrackingCommand(kernel.NewUUID(), restaurant,
			testGeoPoint(t, 55.75, 37.61), testGeoPoint(t, 55.76, 37.62))
		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var cmd commands.StartTrackingCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrStartTrackingCommandIsNotConstructed)
	})
}

func TestStartTrackingCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewStartTrackingCommand(
		kernel.NewUUID(), kernel.NewUUID(),
		testGeoPoint(t, 55.75, 37.61), testGeoPoint(t, 55.76, 37.62))
	require.NoError(t, err)

	repo := new(MockTrackRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TrackRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.AnythingOfType("*order.Track")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTrackUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartTrackingCommandHandler(factory)
	require.NoError(t, h.Handle(ctx, cmd))
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestStartTrackingCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockTrackUoWFactory)
	h := commands.NewStartTrackingCommandHandler(factory)

	err := h.Handle(t.Context(), commands.StartTrackingCommand{})
	require.Error(t, err)
}

func TestStartTrackingCommandHandler_Handle_AddError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewStartTrackingCommand(
		kernel.NewUUID(), kernel.NewUUID(),
		testGeoPoint(t, 55.75, 37.61), testGeoPoint(t, 55.76, 37.62))
	require.NoError(t, err)

	repo := new(MockTrackRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TrackRepository").Return(repo).Once(),
		repo.On("Add", mock.Anything, mock.Anything).Return(errors.New("duplicate key")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockTrackUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewStartTrackingCommandHandler(factory)
	require.Error(t, h.Handle(ctx, cmd))
	uow.AssertExpectations(t)
}
