package postgres_test

import (
	"context"
	"testing"
	"time"

	"tracking/internal/adapters/out/postgres"
	"tracking/internal/adapters/out/postgres/courierrepo"
	"tracking/internal/adapters/out/postgres/trackrepo"
	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite verifies that the unit of work commits and
// rolls back track and courier changes as a whole.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	factory   *postgres.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
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
		&courierrepo.CourierDTO{},
		&courierrepo.CourierOrderDTO{},
	))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE tracks, track_events, couriers, courier_orders").Error)
	suite.factory = postgres.NewGormUnitOfWorkFactory(suite.db)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) newTrack() *order.Track {
	restaurant, err := kernel.NewGeoPoint(55.751244, 37.618423)
	suite.Require().NoError(err)
	customer, err := kernel.NewGeoPoint(55.760186, 37.618711)
	suite.Require().NoError(err)

	track, err := order.NewTrack(kernel.NewUUID(), kernel.NewUUID(), restaurant, customer)
	suite.Require().NoError(err)
	return track
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsAcrossRepositories() {
	ctx := context.Background()
	track := suite.newTrack()
	aggregate, err := courier.NewCourier(kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Require().NoError(aggregate.AssignOrder(track.ID()))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.TrackRepository().Add(ctx, track))
	suite.Require().NoError(uow.CourierRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Commit(ctx))

	verifier := suite.factory.Create()
	loadedTrack, err := verifier.TrackRepository().Get(ctx, track.ID())
	suite.Require().NoError(err)
	suite.True(loadedTrack.ID().IsEqual(track.ID()))

	loadedCourier, err := verifier.CourierRepository().Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.Require().Len(loadedCourier.AssignedOrders(), 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsAllChanges() {
	ctx := context.Background()
	track := suite.newTrack()
	aggregate, err := courier.NewCourier(kernel.NewUUID())
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.TrackRepository().Add(ctx, track))
	suite.Require().NoError(uow.CourierRepository().Add(ctx, aggregate))
	suite.Require().NoError(uow.Rollback(ctx))

	verifier := suite.factory.Create()
	_, err = verifier.TrackRepository().Get(ctx, track.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	_, err = verifier.CourierRepository().Get(ctx, aggregate.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_WithoutBegin() {
	uow := suite.factory.Create()
	suite.Require().ErrorIs(uow.Commit(context.Background()), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_AfterCommit() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Commit(ctx))

	// The usual `defer Rollback` after a successful commit hits this path.
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
