package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tracking/cmd"
	httpadapter "tracking/internal/adapters/in/http"
	"tracking/internal/adapters/in/ws"
	"tracking/internal/adapters/out/postgres/courierrepo"
	"tracking/internal/adapters/out/postgres/trackrepo"
	"tracking/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := getConfigs(logger)

	gormDB, err := connectDB(config)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	cache, err := cmd.NewPositionCache(config)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(config, gormDB, cache, logger)
	if err != nil {
		logger.Error("composition root construction failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fleet telemetry intake.
	positionConsumer := root.CreatePositionConsumer(config)
	go func() {
		if err := positionConsumer.Start(ctx); err != nil {
			logger.Error("position consumer stopped", "error", err)
			stop()
		}
	}()

	// Scheduled estimate refreshes and position checkpoints.
	jobManager := jobs.NewJobManager(
		root.CreateRefreshActiveETAsCommandHandler(),
		root.CreateCheckpointPositionsCommandHandler(),
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		logger.Error("job startup failed", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	e := buildEcho(root, logger)
	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil {
			logger.Info("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	root.Registry().CloseAll()
	_ = e.Shutdown(context.Background())
}

func buildEcho(root *cmd.CompositionRoot, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "Healthy")
	})

	server := httpadapter.NewServer(
		root.CreateStartTrackingCommandHandler(),
		root.CreateSubmitOrderEventCommandHandler(),
		root.CreateRecalculateETACommandHandler(),
		root.CreateReportPositionCommandHandler(),
		root.CreateGetLiveETAQueryHandler(),
		root.CreateGetETAHistoryQueryHandler(),
		root.CreateGetOrderEventsQueryHandler(),
		root.CreateCalculateInitialETAQueryHandler(),
	)
	server.RegisterRoutes(e)

	wsHandler := ws.NewHandler(root.Registry(), root.CreateReportPositionCommandHandler(), logger)
	wsHandler.RegisterRoutes(e)

	return e
}

func connectDB(config cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser,
		config.DBPassword, config.DBName, config.DBSslMode)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&trackrepo.TrackDTO{},
		&trackrepo.TrackEventDTO{},
		&courierrepo.CourierDTO{},
		&courierrepo.CourierOrderDTO{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func getConfigs(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("no .env file found, using process environment")
	}

	return cmd.Config{
		HTTPPort:   envString("HTTP_PORT", "8080"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: envString("DB_PASSWORD", "postgres"),
		DBName:     envString("DB_NAME", "tracking"),
		DBSslMode:  envString("DB_SSLMODE", "disable"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		KafkaHost:          envString("KAFKA_HOST", "localhost:9092"),
		KafkaConsumerGroup: envString("KAFKA_CONSUMER_GROUP", "tracking-engine"),
		KafkaPositionTopic: envString("KAFKA_POSITION_TOPIC", "courier-positions"),
		KafkaWorkers:       envInt("KAFKA_WORKERS", 8),

		GeoServiceURL:            envString("GEO_SERVICE_URL", "http://localhost:8090"),
		GeoRequestTimeoutSeconds: envInt("GEO_REQUEST_TIMEOUT_SECONDS", 2),
		GeoCircuityFactor:        envFloat("GEO_CIRCUITY_FACTOR", 1.3),

		DefaultPrepSeconds:        envInt("ETA_DEFAULT_PREP_SECONDS", 900),
		FoodDelaySeconds:          envInt("ETA_FOOD_DELAY_SECONDS", 300),
		TrafficPenaltySeconds:     envInt("ETA_TRAFFIC_PENALTY_SECONDS", 240),
		TrafficDecayWindowSeconds: envInt("ETA_TRAFFIC_DECAY_WINDOW_SECONDS", 600),
		NearbyFloorSeconds:        envInt("ETA_NEARBY_FLOOR_SECONDS", 120),
		CourierSpeedMPS:           envFloat("ETA_COURIER_SPEED_MPS", 7.0),
		TimeOfDayFactor:           envFloat("ETA_TIME_OF_DAY_FACTOR", 1.0),

		PositionCacheTTLSeconds: envInt("POSITION_CACHE_TTL_SECONDS", 900),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
