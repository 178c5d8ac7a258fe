package commands_test

import (
	"testing"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/services"

	"github.com/stretchr/testify/require"
)

var testSettings = commands.EstimationSettings{
	Config: order.RecalcConfig{
		DefaultPrepSeconds:    600,
		FoodDelaySeconds:      300,
		TrafficPenaltySeconds: 240,
		TrafficDecayWindow:    10 * time.Minute,
		NearbyFloorSeconds:    120,
	},
	Profile: services.SpeedProfile{MetersPerSecond: 10, TimeOfDayFactor: 1.0},
}

func fixedClock(at time.Time) commands.Clock {
	return func() time.Time { return at }
}

func testGeoPoint(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return point
}

func newPendingTrack(t *testing.T) *order.Track {
	t.Helper()
	track, err := order.NewTrack(
		kernel.NewUUID(),
		kernel.NewUUID(),
		testGeoPoint(t, 55.751244, 37.618423),
		testGeoPoint(t, 55.760186, 37.618711),
	)
	require.NoError(t, err)
	return track
}
