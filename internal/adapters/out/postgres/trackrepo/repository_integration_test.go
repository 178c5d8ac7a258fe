package trackrepo_test

import (
	"context"
	"testing"
	"time"

	"tracking/internal/adapters/out/postgres/trackrepo"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/services"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of the aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// TrackRepositoryIntegrationTestSuite verifies tracking record persistence
// against a real PostgreSQL instance.
type TrackRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *trackrepo.GormTrackRepository
	tracker    *MockAggregateTracker
}

func (suite *TrackRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&trackrepo.TrackDTO{},
		&trackrepo.TrackEventDTO{},
	))
}

func (suite *TrackRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(
		suite.db.Exec("TRUNCATE TABLE tracks, track_events").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = trackrepo.NewGormTrackRepository(suite.db, suite.tracker)
}

func (suite *TrackRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *TrackRepositoryIntegrationTestSuite) newTrack() *order.Track {
	restaurant, err := kernel.NewGeoPoint(55.751244, 37.618423)
	suite.Require().NoError(err)
	customer, err := kernel.NewGeoPoint(55.760186, 37.618711)
	suite.Require().NoError(err)

	track, err := order.NewTrack(kernel.NewUUID(), kernel.NewUUID(), restaurant, customer)
	suite.Require().NoError(err)
	return track
}

func (suite *TrackRepositoryIntegrationTestSuite) applyAccepted(track *order.Track, at time.Time) {
	ev, err := order.NewEvent(order.EventRestaurantAccepted, track.ID(), at,
		map[string]string{order.MetadataPrepTimeSeconds: "480"})
	suite.Require().NoError(err)

	_, err = track.Apply(ev, order.RecalcInput{
		PickupDistanceMeters:   -1,
		DeliveryDistanceMeters: 5000,
		Profile:                services.SpeedProfile{MetersPerSecond: 10, TimeOfDayFactor: 1.0},
		Now:                    at,
		Config: order.RecalcConfig{
			DefaultPrepSeconds:    600,
			FoodDelaySeconds:      300,
			TrafficPenaltySeconds: 240,
			TrafficDecayWindow:    10 * time.Minute,
			NearbyFloorSeconds:    120,
		},
	})
	suite.Require().NoError(err)
}

func (suite *TrackRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()
	track := suite.newTrack()
	suite.applyAccepted(track, time.Now().UTC().Truncate(time.Microsecond))

	suite.Require().NoError(suite.repository.Add(ctx, track))

	loaded, err := suite.repository.Get(ctx, track.ID())
	suite.Require().NoError(err)

	suite.Equal(track.Status(), loaded.Status())
	suite.Equal(track.Version(), loaded.Version())
	suite.Require().Len(loaded.History(), 1)
	suite.Equal(order.EventRestaurantAccepted, loaded.History()[0].Kind)
	suite.Equal("480", loaded.History()[0].Metadata[order.MetadataPrepTimeSeconds])
	suite.WithinDuration(track.EstimatedDeliveryTime(), loaded.EstimatedDeliveryTime(), time.Millisecond)
}

func (suite *TrackRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *TrackRepositoryIntegrationTestSuite) TestUpdate_AppendsHistory() {
	ctx := context.Background()
	track := suite.newTrack()
	t0 := time.Now().UTC().Truncate(time.Microsecond)
	suite.applyAccepted(track, t0)
	suite.Require().NoError(suite.repository.Add(ctx, track))

	ev, err := order.NewEvent(order.EventFoodNotReady, track.ID(), t0.Add(time.Minute), nil)
	suite.Require().NoError(err)
	_, err = track.Apply(ev, order.RecalcInput{
		PickupDistanceMeters:   -1,
		DeliveryDistanceMeters: -1,
		Profile:                services.SpeedProfile{MetersPerSecond: 10},
		Now:                    t0.Add(time.Minute),
		Config:                 order.RecalcConfig{FoodDelaySeconds: 300},
	})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Update(ctx, track))

	loaded, err := suite.repository.Get(ctx, track.ID())
	suite.Require().NoError(err)
	suite.Require().Len(loaded.History(), 2)
	suite.Equal(order.EventFoodNotReady, loaded.History()[1].Kind)

	// The rebuilt duplicate guard still rejects the persisted event.
	_, err = loaded.Apply(ev, order.RecalcInput{
		Profile: services.SpeedProfile{MetersPerSecond: 10},
		Now:     t0.Add(2 * time.Minute),
		Config:  order.RecalcConfig{},
	})
	suite.Require().ErrorIs(err, order.ErrDuplicateEvent)
}

func (suite *TrackRepositoryIntegrationTestSuite) TestUpdate_NotFound() {
	err := suite.repository.Update(context.Background(), suite.newTrack())
	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *TrackRepositoryIntegrationTestSuite) TestGetAllActive_ExcludesTerminal() {
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Microsecond)

	active := suite.newTrack()
	suite.applyAccepted(active, t0)
	suite.Require().NoError(suite.repository.Add(ctx, active))

	cancelled := suite.newTrack()
	ev, err := order.NewEvent(order.EventCancelled, cancelled.ID(), t0, nil)
	suite.Require().NoError(err)
	_, err = cancelled.Apply(ev, order.RecalcInput{
		Profile: services.SpeedProfile{MetersPerSecond: 10},
		Now:     t0,
		Config:  order.RecalcConfig{},
	})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, cancelled))

	tracks, err := suite.repository.GetAllActive(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(tracks, 1)
	suite.True(tracks[0].ID().IsEqual(active.ID()))
}

func TestTrackRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(TrackRepositoryIntegrationTestSuite))
}
