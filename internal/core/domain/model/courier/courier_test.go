package courier_test

import (
	"testing"
	"time"

	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPosition(t *testing.T, lat, lng float64) kernel.Position {
	t.Helper()
	point, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	position, err := kernel.NewPosition(point, 0, time.Now())
	require.NoError(t, err)
	return position
}

func TestNewCourier(t *testing.T) {
	c, err := courier.NewCourier(kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Nil(t, c.LastPosition())
	assert.Zero(t, c.LastSequence())
	assert.Empty(t, c.AssignedOrders())

	t.Run("rejects_zero_id", func(t *testing.T) {
		_, err := courier.NewCourier(kernel.UUID{})
		require.Error(t, err)
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var c courier.Courier
		require.ErrorIs(t, c.Validate(), courier.ErrCourierIsNotConstructed)
	})
}

func TestCourier_ApplyPosition(t *testing.T) {
	t.Run("applies_increasing_sequences", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.NewUUID())
		require.NoError(t, err)

		first := testPosition(t, 55.75, 37.61)
		require.NoError(t, c.ApplyPosition(1, first))
		second := testPosition(t, 55.76, 37.62)
		require.NoError(t, c.ApplyPosition(2, second))

		require.NotNil(t, c.LastPosition())
		assert.Equal(t, second, *c.LastPosition())
		assert.EqualValues(t, 2, c.LastSequence())
	})

	t.Run("drops_stale_sequence", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.NewUUID())
		require.NoError(t, err)

		fifth := testPosition(t, 55.75, 37.61)
		require.NoError(t, c.ApplyPosition(5, fifth))

		// A late tick with a lower sequence must not regress the position.
		err = c.ApplyPosition(4, testPosition(t, 55.70, 37.50))
		require.ErrorIs(t, err, courier.ErrStaleSequence)

		assert.Equal(t, fifth, *c.LastPosition())
		assert.EqualValues(t, 5, c.LastSequence())
	})

	t.Run("drops_repeated_sequence", func(t *testing.T) {
		c, err := courier.NewCourier(kernel.NewUUID())
		require.NoError(t, err)

		require.NoError(t, c.ApplyPosition(3, testPosition(t, 55.75, 37.61)))
		err = c.ApplyPosition(3, testPosition(t, 55.76, 37.62))
		require.ErrorIs(t, err, courier.ErrStaleSequence)
	})
}

func TestCourier_OrderAssignment(t *testing.T) {
	c, err := courier.NewCourier(kernel.NewUUID())
	require.NoError(t, err)

	first := kernel.NewUUID()
	second := kernel.NewUUID()

	require.NoError(t, c.AssignOrder(first))
	require.NoError(t, c.AssignOrder(second))
	require.NoError(t, c.AssignOrder(first)) // idempotent
	require.Len(t, c.AssignedOrders(), 2)

	require.NoError(t, c.ReleaseOrder(first))
	require.Len(t, c.AssignedOrders(), 1)
	assert.True(t, c.AssignedOrders()[0].IsEqual(second))

	require.NoError(t, c.ReleaseOrder(first)) // releasing again is a no-op
	require.Len(t, c.AssignedOrders(), 1)
}

func TestRestoreCourier(t *testing.T) {
	id := kernel.NewUUID()
	position := testPosition(t, 55.75, 37.61)
	orders := []kernel.UUID{kernel.NewUUID()}

	c, err := courier.RestoreCourier(id, &position, 7, orders)
	require.NoError(t, err)

	assert.True(t, c.ID().IsEqual(id))
	assert.EqualValues(t, 7, c.LastSequence())
	require.NotNil(t, c.LastPosition())
	assert.Equal(t, position, *c.LastPosition())
	require.Len(t, c.AssignedOrders(), 1)

	// Restored sequence still guards against stale ticks.
	err = c.ApplyPosition(6, testPosition(t, 55.76, 37.62))
	require.ErrorIs(t, err, courier.ErrStaleSequence)
}
