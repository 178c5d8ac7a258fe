package cmd

import (
	"log/slog"
	"time"

	"tracking/internal/adapters/in/kafka"
	"tracking/internal/adapters/out/geo"
	"tracking/internal/adapters/out/postgres"
	redisadapter "tracking/internal/adapters/out/redis"
	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/services"
	"tracking/internal/core/ports"
	"tracking/internal/realtime"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters, use cases, and the realtime layer. All
// construction happens here; the rest of the application receives finished
// handlers.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	cache       ports.PositionCache
	geoProvider ports.GeoDistanceProvider
	settings    commands.EstimationSettings
	clock       commands.Clock
	logger      *slog.Logger

	registry    *realtime.Registry
	broadcaster *realtime.Broadcaster

	// One lock registry per key kind, shared by every handler instance the
	// root hands out. Per-order and per-courier serialization only holds if
	// all intakes (HTTP, WebSocket, Kafka, cron) contend on the same locks.
	orderLocks   *commands.LockRegistry
	courierLocks *commands.LockRegistry
}

// NewCompositionRoot builds the object graph from the configuration and the
// already-connected infrastructure clients.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	cache ports.PositionCache,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	routing, err := geo.NewRoutingClient(
		config.GeoServiceURL,
		time.Duration(config.GeoRequestTimeoutSeconds)*time.Second,
	)
	if err != nil {
		return nil, err
	}
	geoProvider := geo.NewFallbackProvider(
		routing,
		geo.NewHaversineProvider(config.GeoCircuityFactor),
		logger,
	)

	root := &CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		cache:       cache,
		geoProvider: geoProvider,
		settings: commands.EstimationSettings{
			Config: order.RecalcConfig{
				DefaultPrepSeconds:    config.DefaultPrepSeconds,
				FoodDelaySeconds:      config.FoodDelaySeconds,
				TrafficPenaltySeconds: config.TrafficPenaltySeconds,
				TrafficDecayWindow:    time.Duration(config.TrafficDecayWindowSeconds) * time.Second,
				NearbyFloorSeconds:    config.NearbyFloorSeconds,
			},
			Profile: services.SpeedProfile{
				MetersPerSecond: config.CourierSpeedMPS,
				TimeOfDayFactor: config.TimeOfDayFactor,
			},
		},
		clock:        time.Now,
		logger:       logger,
		orderLocks:   commands.NewLockRegistry(),
		courierLocks: commands.NewLockRegistry(),
	}

	snapshot := realtime.NewSnapshotProvider(root.CreateGetLiveETAQueryHandler(), cache)
	root.registry = realtime.NewRegistry(realtime.DefaultSubscriberBuffer, snapshot.Snapshot, logger)
	root.broadcaster = realtime.NewBroadcaster(root.registry)

	return root, nil
}

// Registry exposes the subscriber registry for the WebSocket adapter.
func (c *CompositionRoot) Registry() *realtime.Registry {
	return c.registry
}

func (c *CompositionRoot) CreateStartTrackingCommandHandler() commands.StartTrackingCommandHandler {
	var f commands.TrackUoWFactory = FuncTrackUoWFactory(func() commands.TrackUoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartTrackingCommandHandler(f)
}

func (c *CompositionRoot) CreateSubmitOrderEventCommandHandler() commands.SubmitOrderEventCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewSubmitOrderEventCommandHandler(
		f, c.geoProvider, c.cache, c.broadcaster, c.settings, c.clock, c.orderLocks)
}

func (c *CompositionRoot) CreateRecalculateETACommandHandler() commands.RecalculateETACommandHandler {
	var f commands.TrackUoWFactory = FuncTrackUoWFactory(func() commands.TrackUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecalculateETACommandHandler(
		f, c.geoProvider, c.cache, c.broadcaster, c.settings, c.clock, c.orderLocks)
}

func (c *CompositionRoot) CreateReportPositionCommandHandler() commands.ReportPositionCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportPositionCommandHandler(c.cache, c.broadcaster, f, c.courierLocks, c.logger)
}

func (c *CompositionRoot) CreateCheckpointPositionsCommandHandler() commands.CheckpointPositionsCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCheckpointPositionsCommandHandler(f, c.cache, c.logger)
}

func (c *CompositionRoot) CreateRefreshActiveETAsCommandHandler() commands.RefreshActiveETAsCommandHandler {
	var f commands.TrackUoWFactory = FuncTrackUoWFactory(func() commands.TrackUoW {
		return c.uowFactory.Create()
	})
	recalc := c.CreateRecalculateETACommandHandler()
	return commands.NewRefreshActiveETAsCommandHandler(f, &recalc, c.logger)
}

func (c *CompositionRoot) CreateGetLiveETAQueryHandler() queries.GetLiveETAQueryHandler {
	return queries.NewGetLiveETAQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetETAHistoryQueryHandler() queries.GetETAHistoryQueryHandler {
	return queries.NewGetETAHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderEventsQueryHandler() queries.GetOrderEventsQueryHandler {
	return queries.NewGetOrderEventsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateCalculateInitialETAQueryHandler() queries.CalculateInitialETAQueryHandler {
	return queries.NewCalculateInitialETAQueryHandler(
		c.geoProvider, c.settings.Config, c.settings.Profile, c.clock)
}

// CreatePositionConsumer wires the telemetry topic to the position relay.
func (c *CompositionRoot) CreatePositionConsumer(config Config) *kafka.PositionConsumer {
	consumer := kafka.NewConsumer(
		[]string{config.KafkaHost},
		config.KafkaConsumerGroup,
		config.KafkaPositionTopic,
		config.KafkaWorkers,
		c.logger,
	)
	return kafka.NewPositionConsumer(consumer, c.CreateReportPositionCommandHandler(), c.logger)
}

// NewPositionCache connects the Redis-backed position cache.
func NewPositionCache(config Config) (ports.PositionCache, error) {
	client, err := redisadapter.NewClient(config.RedisAddr, config.RedisPassword, config.RedisDB)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(config.PositionCacheTTLSeconds) * time.Second
	return redisadapter.NewPositionCache(client, ttl), nil
}

type FuncTrackUoWFactory func() commands.TrackUoW

func (f FuncTrackUoWFactory) Create() commands.TrackUoW {
	return f()
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
