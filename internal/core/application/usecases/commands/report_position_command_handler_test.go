package commands_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func notFoundError(id kernel.UUID) error {
	return errs.NewObjectNotFoundError("courier", id.String())
}

func testPosition(t *testing.T, lat, lng float64) kernel.Position {
	t.Helper()
	position, err := kernel.NewPosition(testGeoPoint(t, lat, lng), 90, time.Now())
	require.NoError(t, err)
	return position
}

func TestNewReportPositionCommand_RejectsNonPositiveSequence(t *testing.T) {
	// Sequence numbers start at 1; a zero or negative sequence would slip
	// past the watermark gate forever.
	position := testPosition(t, 55.75, 37.61)
	for _, sequence := range []int64{0, -3} {
		_, err := commands.NewReportPositionCommand(kernel.NewUUID(), sequence, position)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	}
}

func TestReportPositionCommandHandler_Handle_AppliesAndBroadcasts(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	orderID := kernel.NewUUID()
	position := testPosition(t, 55.75, 37.61)

	cmd, err := commands.NewReportPositionCommand(courierID, 7, position)
	require.NoError(t, err)

	aggregate, err := courier.NewCourier(courierID)
	require.NoError(t, err)
	require.NoError(t, aggregate.AssignOrder(orderID))

	cache := new(MockPositionCache)
	broadcaster := new(MockBroadcaster)
	repo := new(MockCourierRepository)
	uow := new(MockUoW)

	mock.InOrder(
		cache.On("GetLastPosition", mock.Anything, courierID).
			Return(nil, int64(0), nil).Once(),
		cache.On("SetLastPosition", mock.Anything, courierID, position, int64(7)).
			Return(nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, courierID).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		broadcaster.On("BroadcastPosition", mock.AnythingOfType("ports.PositionUpdate")).Once(),
	)

	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReportPositionCommandHandler(
		cache, broadcaster, factory, commands.NewLockRegistry(), discardLogger())

	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.False(t, result.Dropped)

	cache.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestReportPositionCommandHandler_Handle_DropsStaleTick(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	current := testPosition(t, 55.75, 37.61)

	// Sequence 4 arrives after 5 was already applied.
	cmd, err := commands.NewReportPositionCommand(courierID, 4, testPosition(t, 55.70, 37.50))
	require.NoError(t, err)

	cache := new(MockPositionCache)
	cache.On("GetLastPosition", mock.Anything, courierID).
		Return(&current, int64(5), nil).Once()

	broadcaster := new(MockBroadcaster)
	factory := new(MockCourierUoWFactory)

	h := commands.NewReportPositionCommandHandler(
		cache, broadcaster, factory, commands.NewLockRegistry(), discardLogger())

	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, result.Dropped)
	assert.False(t, result.Applied)

	cache.AssertNotCalled(t, "SetLastPosition",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	broadcaster.AssertNotCalled(t, "BroadcastPosition", mock.Anything)
}

func TestReportPositionCommandHandler_Handle_UnknownCourierStillBroadcasts(t *testing.T) {
	ctx := t.Context()
	courierID := kernel.NewUUID()
	position := testPosition(t, 55.75, 37.61)

	cmd, err := commands.NewReportPositionCommand(courierID, 1, position)
	require.NoError(t, err)

	cache := new(MockPositionCache)
	broadcaster := new(MockBroadcaster)
	repo := new(MockCourierRepository)
	uow := new(MockUoW)

	mock.InOrder(
		cache.On("GetLastPosition", mock.Anything, courierID).
			Return(nil, int64(0), nil).Once(),
		cache.On("SetLastPosition", mock.Anything, courierID, position, int64(1)).
			Return(nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, courierID).
			Return(nil, notFoundError(courierID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		broadcaster.On("BroadcastPosition", mock.AnythingOfType("ports.PositionUpdate")).Once(),
	)

	factory := new(MockCourierUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewReportPositionCommandHandler(
		cache, broadcaster, factory, commands.NewLockRegistry(), discardLogger())

	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	broadcaster.AssertExpectations(t)
}
