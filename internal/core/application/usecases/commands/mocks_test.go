package commands_test

import (
	"context"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockTrackRepository struct{ mock.Mock }

func (m *MockTrackRepository) Add(ctx context.Context, aggregate *order.Track) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTrackRepository) Update(ctx context.Context, aggregate *order.Track) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockTrackRepository) Get(ctx context.Context, orderID kernel.UUID) (*order.Track, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Track), args.Error(1)
}

func (m *MockTrackRepository) GetAllActive(ctx context.Context) ([]*order.Track, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Track), args.Error(1)
}

func (m *MockTrackRepository) GetAllActiveByCourier(
	ctx context.Context, courierID kernel.UUID,
) ([]*order.Track, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Track), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, aggregate *courier.Courier) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, aggregate *courier.Courier) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) TrackRepository() ports.TrackRepository {
	args := m.Called()
	return args.Get(0).(ports.TrackRepository)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockTrackUoWFactory struct{ mock.Mock }

func (m *MockTrackUoWFactory) Create() commands.TrackUoW {
	args := m.Called()
	return args.Get(0).(commands.TrackUoW)
}

type MockCourierUoWFactory struct{ mock.Mock }

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

type MockGeoDistanceProvider struct{ mock.Mock }

func (m *MockGeoDistanceProvider) RouteDistanceMeters(
	ctx context.Context, from, to kernel.GeoPoint,
) (float64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockPositionCache struct{ mock.Mock }

func (m *MockPositionCache) SetLastPosition(
	ctx context.Context, courierID kernel.UUID, position kernel.Position, sequence int64,
) error {
	args := m.Called(ctx, courierID, position, sequence)
	return args.Error(0)
}

func (m *MockPositionCache) GetLastPosition(
	ctx context.Context, courierID kernel.UUID,
) (*kernel.Position, int64, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).(*kernel.Position), args.Get(1).(int64), args.Error(2)
}

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) BroadcastETA(update ports.ETAUpdate) {
	m.Called(update)
}

func (m *MockBroadcaster) BroadcastPosition(update ports.PositionUpdate) {
	m.Called(update)
}
