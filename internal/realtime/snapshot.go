package realtime

import (
	"context"
	"errors"
	"strings"

	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/ports"
	"tracking/internal/pkg/errs"
)

// SnapshotProvider builds the first message a subscriber receives on join:
// the order's current estimate for order groups, the courier's cached
// position for courier groups. Restaurant groups carry no snapshot; their
// subscribers only follow live changes.
type SnapshotProvider struct {
	eta   queries.GetLiveETAQueryHandler
	cache ports.PositionCache
}

// NewSnapshotProvider creates a provider backed by the live ETA query and
// the position cache.
func NewSnapshotProvider(
	eta queries.GetLiveETAQueryHandler,
	cache ports.PositionCache,
) *SnapshotProvider {
	return &SnapshotProvider{eta: eta, cache: cache}
}

// Snapshot implements SnapshotFunc. Unknown orders and couriers yield no
// snapshot rather than an error: joining before the first event is allowed.
func (p *SnapshotProvider) Snapshot(ctx context.Context, group GroupKey) (*Message, error) {
	kind, rawID, ok := strings.Cut(string(group), ":")
	if !ok {
		return nil, nil
	}

	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "order":
		return p.orderSnapshot(ctx, id)
	case "courier":
		return p.courierSnapshot(ctx, id)
	default:
		return nil, nil
	}
}

func (p *SnapshotProvider) orderSnapshot(ctx context.Context, orderID kernel.UUID) (*Message, error) {
	query, err := queries.NewGetLiveETAQuery(orderID)
	if err != nil {
		return nil, err
	}

	state, err := p.eta.Handle(ctx, query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}

	msg := Message{
		Type:        MessageTypeSnapshot,
		OrderID:     state.OrderID.String(),
		Status:      state.Status.String(),
		RiderNearby: state.RiderNearby,
		SentAt:      clockNow(),
	}
	if !state.EstimatedDeliveryTime.IsZero() {
		estimate := state.EstimatedDeliveryTime
		msg.EstimatedDeliveryTime = &estimate
	}
	if state.CourierID != nil {
		msg.CourierID = state.CourierID.String()
	}
	if state.LastKnownPosition != nil {
		msg.Position = &PositionPayload{
			Latitude:   state.LastKnownPosition.Latitude,
			Longitude:  state.LastKnownPosition.Longitude,
			Heading:    state.LastKnownPosition.Heading,
			RecordedAt: state.LastKnownPosition.RecordedAt,
		}
	}
	return &msg, nil
}

func (p *SnapshotProvider) courierSnapshot(ctx context.Context, courierID kernel.UUID) (*Message, error) {
	position, sequence, err := p.cache.GetLastPosition(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, nil
	}

	point := position.Point()
	return &Message{
		Type:      MessageTypeSnapshot,
		CourierID: courierID.String(),
		Position: &PositionPayload{
			Latitude:   point.Lat(),
			Longitude:  point.Lng(),
			Heading:    position.Heading(),
			RecordedAt: position.RecordedAt(),
		},
		Sequence: sequence,
		SentAt:   clockNow(),
	}, nil
}
