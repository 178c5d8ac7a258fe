package realtime_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"
	"tracking/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMessage(orderID kernel.UUID) realtime.Message {
	return realtime.Message{
		Type:    realtime.MessageTypeETA,
		OrderID: orderID.String(),
		SentAt:  time.Now(),
	}
}

func TestRegistry_PublishReachesGroupMembers(t *testing.T) {
	registry := realtime.NewRegistry(4, nil, discardLogger())
	orderID := kernel.NewUUID()
	group := realtime.OrderGroup(orderID)

	first := registry.Subscribe(t.Context(), group)
	defer first.Close()
	second := registry.Subscribe(t.Context(), group)
	defer second.Close()

	other := registry.Subscribe(t.Context(), realtime.OrderGroup(kernel.NewUUID()))
	defer other.Close()

	registry.Publish(group, testMessage(orderID))

	for _, sub := range []*realtime.Subscription{first, second} {
		select {
		case msg := <-sub.Messages():
			assert.Equal(t, orderID.String(), msg.OrderID)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the message")
		}
	}

	select {
	case <-other.Messages():
		t.Fatal("message leaked into another group")
	default:
	}
}

func TestRegistry_CloseLeavesGroup(t *testing.T) {
	registry := realtime.NewRegistry(4, nil, discardLogger())
	group := realtime.OrderGroup(kernel.NewUUID())

	sub := registry.Subscribe(t.Context(), group)
	require.Equal(t, 1, registry.SubscriberCount(group))

	sub.Close()
	sub.Close() // idempotent
	assert.Zero(t, registry.SubscriberCount(group))

	// Publishing to an empty group is a no-op.
	registry.Publish(group, testMessage(kernel.NewUUID()))

	_, open := <-sub.Messages()
	assert.False(t, open)
}

func TestRegistry_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	registry := realtime.NewRegistry(4, nil, discardLogger())
	orderID := kernel.NewUUID()
	group := realtime.OrderGroup(orderID)

	// One slow subscriber that never reads, many healthy ones.
	slow := registry.Subscribe(t.Context(), group)
	defer slow.Close()

	healthy := make([]*realtime.Subscription, 0, 100)
	for range 100 {
		sub := registry.Subscribe(t.Context(), group)
		defer sub.Close()
		healthy = append(healthy, sub)
	}

	// Publish more than the slow subscriber's buffer can hold; the publisher
	// must never block and healthy subscribers drain as they go.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 8 {
			registry.Publish(group, testMessage(orderID))
			for _, sub := range healthy {
				select {
				case <-sub.Messages():
				case <-time.After(time.Second):
					t.Errorf("healthy subscriber starved at message %d", i)
					return
				}
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The slow subscriber lost the overflow.
	assert.Positive(t, registry.DroppedMessages())
}

func TestRegistry_SnapshotDeliveredOnJoin(t *testing.T) {
	orderID := kernel.NewUUID()
	snapshot := func(_ context.Context, group realtime.GroupKey) (*realtime.Message, error) {
		if group != realtime.OrderGroup(orderID) {
			return nil, nil
		}
		return &realtime.Message{
			Type:    realtime.MessageTypeSnapshot,
			OrderID: orderID.String(),
		}, nil
	}

	registry := realtime.NewRegistry(4, snapshot, discardLogger())

	sub := registry.Subscribe(t.Context(), realtime.OrderGroup(orderID))
	defer sub.Close()

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, realtime.MessageTypeSnapshot, msg.Type)
		assert.Equal(t, orderID.String(), msg.OrderID)
	case <-time.After(time.Second):
		t.Fatal("snapshot was not delivered on join")
	}

	// A group without state simply has no first message.
	bare := registry.Subscribe(t.Context(), realtime.OrderGroup(kernel.NewUUID()))
	defer bare.Close()
	select {
	case <-bare.Messages():
		t.Fatal("unexpected snapshot for untracked order")
	default:
	}
}

func TestRegistry_PublishDuringJoinIsNotLost(t *testing.T) {
	orderID := kernel.NewUUID()
	group := realtime.OrderGroup(orderID)

	snapshotStarted := make(chan struct{})
	release := make(chan struct{})
	snapshot := func(context.Context, realtime.GroupKey) (*realtime.Message, error) {
		close(snapshotStarted)
		<-release
		return &realtime.Message{
			Type:    realtime.MessageTypeSnapshot,
			OrderID: orderID.String(),
		}, nil
	}

	registry := realtime.NewRegistry(4, snapshot, discardLogger())

	subCh := make(chan *realtime.Subscription)
	go func() { subCh <- registry.Subscribe(context.Background(), group) }()
	<-snapshotStarted

	// An update published mid-join must wait for the join, so it lands in
	// the new subscriber's channel instead of falling between the snapshot
	// read and the registration.
	published := make(chan struct{})
	go func() {
		registry.Publish(group, testMessage(orderID))
		close(published)
	}()

	select {
	case <-published:
		t.Fatal("publish completed while a join was reading the snapshot")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	sub := <-subCh
	defer sub.Close()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish never completed after the join finished")
	}

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, realtime.MessageTypeSnapshot, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("snapshot was not delivered first")
	}
	select {
	case msg := <-sub.Messages():
		assert.Equal(t, realtime.MessageTypeETA, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("update published during the join was lost")
	}
}

func TestBroadcaster_FansOutToGroups(t *testing.T) {
	registry := realtime.NewRegistry(4, nil, discardLogger())
	broadcaster := realtime.NewBroadcaster(registry)

	orderID := kernel.NewUUID()
	restaurantID := kernel.NewUUID()
	courierID := kernel.NewUUID()

	orderSub := registry.Subscribe(t.Context(), realtime.OrderGroup(orderID))
	defer orderSub.Close()
	restaurantSub := registry.Subscribe(t.Context(), realtime.RestaurantGroup(restaurantID))
	defer restaurantSub.Close()
	courierSub := registry.Subscribe(t.Context(), realtime.CourierGroup(courierID))
	defer courierSub.Close()

	estimate := time.Now().Add(20 * time.Minute)
	broadcaster.BroadcastETA(ports.ETAUpdate{
		OrderID:               orderID,
		RestaurantID:          restaurantID,
		EstimatedDeliveryTime: estimate,
		EstimateSeconds:       1200,
	})

	for _, sub := range []*realtime.Subscription{orderSub, restaurantSub} {
		select {
		case msg := <-sub.Messages():
			assert.Equal(t, realtime.MessageTypeETA, msg.Type)
			assert.Equal(t, orderID.String(), msg.OrderID)
			assert.Equal(t, 1200, msg.EstimateSeconds)
		case <-time.After(time.Second):
			t.Fatal("eta update not fanned out")
		}
	}

	point, err := kernel.NewGeoPoint(55.75, 37.61)
	require.NoError(t, err)
	position, err := kernel.NewPosition(point, 180, time.Now())
	require.NoError(t, err)

	broadcaster.BroadcastPosition(ports.PositionUpdate{
		CourierID: courierID,
		OrderIDs:  []kernel.UUID{orderID},
		Position:  position,
		Sequence:  3,
	})

	for _, sub := range []*realtime.Subscription{courierSub, orderSub} {
		select {
		case msg := <-sub.Messages():
			assert.Equal(t, realtime.MessageTypePosition, msg.Type)
			require.NotNil(t, msg.Position)
			assert.InDelta(t, 55.75, msg.Position.Latitude, 1e-9)
			assert.EqualValues(t, 3, msg.Sequence)
		case <-time.After(time.Second):
			t.Fatal("position update not fanned out")
		}
	}
}
