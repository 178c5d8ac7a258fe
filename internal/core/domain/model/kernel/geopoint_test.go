package kernel_test

import (
	"math"
	"testing"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	t.Run("creates_point_with_valid_coordinates", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(52.3702, 4.8952)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.InDelta(t, 52.3702, p.Lat(), 1e-9)
		assert.InDelta(t, 4.8952, p.Lng(), 1e-9)
	})

	t.Run("accepts_boundary_coordinates", func(t *testing.T) {
		cases := []struct {
			name     string
			lat, lng float64
		}{
			{"north_pole", 90, 0},
			{"south_pole", -90, 0},
			{"antimeridian_east", 0, 180},
			{"antimeridian_west", 0, -180},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := kernel.NewGeoPoint(tc.lat, tc.lng)
				require.NoError(t, err)
			})
		}
	})

	t.Run("rejects_out_of_range_coordinates", func(t *testing.T) {
		cases := []struct {
			name     string
			lat, lng float64
		}{
			{"lat_too_high", 90.01, 0},
			{"lat_too_low", -90.01, 0},
			{"lng_too_high", 0, 180.01},
			{"lng_too_low", 0, -180.01},
			{"lat_nan", math.NaN(), 0},
			{"lng_nan", 0, math.NaN()},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := kernel.NewGeoPoint(tc.lat, tc.lng)
				require.Error(t, err)
				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
			})
		}
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var p kernel.GeoPoint

		err := p.Validate()

		require.Error(t, err)
		assert.Equal(t, kernel.ErrGeoPointIsNotConstructed, err)
	})
}

func TestGeoPoint_DistanceMeters(t *testing.T) {
	t.Run("distance_to_self_is_zero", func(t *testing.T) {
		p, _ := kernel.NewGeoPoint(48.8566, 2.3522)

		d, err := p.DistanceMeters(p)

		require.NoError(t, err)
		assert.InDelta(t, 0, d, 1e-6)
	})

	t.Run("paris_to_london_is_about_344km", func(t *testing.T) {
		paris, _ := kernel.NewGeoPoint(48.8566, 2.3522)
		london, _ := kernel.NewGeoPoint(51.5074, -0.1278)

		d, err := paris.DistanceMeters(london)

		require.NoError(t, err)
		assert.InDelta(t, 344000, d, 2000)
	})

	t.Run("distance_is_symmetric", func(t *testing.T) {
		a, _ := kernel.NewGeoPoint(40.7128, -74.0060)
		b, _ := kernel.NewGeoPoint(34.0522, -118.2437)

		d1, err := a.DistanceMeters(b)
		require.NoError(t, err)
		d2, err := b.DistanceMeters(a)
		require.NoError(t, err)

		assert.InDelta(t, d1, d2, 1e-6)
	})

	t.Run("unconstructed_point_fails", func(t *testing.T) {
		a, _ := kernel.NewGeoPoint(40.7128, -74.0060)
		var b kernel.GeoPoint

		_, err := a.DistanceMeters(b)

		require.Error(t, err)
	})
}

func TestNewPosition(t *testing.T) {
	point, _ := kernel.NewGeoPoint(52.52, 13.405)

	t.Run("creates_position_with_valid_inputs", func(t *testing.T) {
		now := time.Now()

		p, err := kernel.NewPosition(point, 45, now)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, point, p.Point())
		assert.InDelta(t, 45, p.Heading(), 1e-9)
		assert.Equal(t, now, p.RecordedAt())
	})

	t.Run("rejects_heading_out_of_range", func(t *testing.T) {
		_, err := kernel.NewPosition(point, 360.5, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = kernel.NewPosition(point, -1, time.Now())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("rejects_zero_timestamp", func(t *testing.T) {
		_, err := kernel.NewPosition(point, 0, time.Time{})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("rejects_unconstructed_point", func(t *testing.T) {
		var zero kernel.GeoPoint
		_, err := kernel.NewPosition(zero, 0, time.Now())
		require.Error(t, err)
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var p kernel.Position
		require.Error(t, p.Validate())
	})
}
