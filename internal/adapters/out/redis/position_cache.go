package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tracking/internal/core/domain/model/kernel"

	"github.com/redis/go-redis/v9"
)

const positionKeyPrefix = "tracking:courier:pos:"

// cachedPosition is the JSON value stored per courier.
type cachedPosition struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
	Sequence   int64     `json:"sequence"`
}

// PositionCache implements ports.PositionCache on Redis. Entries expire after
// the configured TTL so couriers that stop reporting age out on their own.
type PositionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPositionCache creates a cache with the given entry TTL. A non-positive
// TTL keeps entries until overwritten.
func NewPositionCache(client *redis.Client, ttl time.Duration) *PositionCache {
	return &PositionCache{client: client, ttl: ttl}
}

// SetLastPosition records the courier's most recent position and sequence.
func (c *PositionCache) SetLastPosition(
	ctx context.Context,
	courierID kernel.UUID,
	position kernel.Position,
	sequence int64,
) error {
	value := cachedPosition{
		Latitude:   position.Point().Lat(),
		Longitude:  position.Point().Lng(),
		Heading:    position.Heading(),
		RecordedAt: position.RecordedAt(),
		Sequence:   sequence,
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, positionKeyPrefix+courierID.String(), raw, c.ttl).Err()
}

// GetLastPosition returns the cached position and sequence, or (nil, 0, nil)
// when nothing is cached for the courier.
func (c *PositionCache) GetLastPosition(
	ctx context.Context,
	courierID kernel.UUID,
) (*kernel.Position, int64, error) {
	raw, err := c.client.Get(ctx, positionKeyPrefix+courierID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var value cachedPosition
	if err = json.Unmarshal(raw, &value); err != nil {
		return nil, 0, err
	}

	point, err := kernel.NewGeoPoint(value.Latitude, value.Longitude)
	if err != nil {
		return nil, 0, err
	}
	position, err := kernel.NewPosition(point, value.Heading, value.RecordedAt)
	if err != nil {
		return nil, 0, err
	}

	return &position, value.Sequence, nil
}
