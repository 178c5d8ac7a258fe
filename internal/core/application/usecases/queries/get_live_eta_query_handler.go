package queries

import (
	"context"
	"database/sql"
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetLiveETAQueryHandler reads the tracking snapshot straight from the store.
type GetLiveETAQueryHandler struct {
	db *gorm.DB
}

// NewGetLiveETAQueryHandler creates a handler for live snapshot queries.
func NewGetLiveETAQueryHandler(db *gorm.DB) GetLiveETAQueryHandler {
	return GetLiveETAQueryHandler{db: db}
}

// Handle returns the order's current status, estimate, and last known
// position. Returns errs.ObjectNotFoundError for unknown orders.
func (h GetLiveETAQueryHandler) Handle(
	ctx context.Context,
	query GetLiveETAQuery,
) (GetLiveETAQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetLiveETAQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			courier_id,
			status,
			estimated_delivery_time,
			rider_nearby,
			last_lat,
			last_lng,
			last_heading,
			last_recorded_at,
			version
		FROM tracks
		WHERE id = ?
	`, query.OrderID().String()).Row()

	var (
		id                    uuid.UUID
		courierID             sql.Null[uuid.UUID]
		status                int
		estimatedDeliveryTime sql.NullTime
		riderNearby           bool
		lastLat, lastLng      sql.NullFloat64
		lastHeading           sql.NullFloat64
		lastRecordedAt        sql.NullTime
		version               int64
	)

	err := row.Scan(&id, &courierID, &status, &estimatedDeliveryTime,
		&riderNearby, &lastLat, &lastLng, &lastHeading, &lastRecordedAt, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetLiveETAQueryResponse{},
				errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetLiveETAQueryResponse{}, err
	}

	orderID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return GetLiveETAQueryResponse{}, err
	}

	response := GetLiveETAQueryResponse{
		OrderID:     orderID,
		Status:      order.Status(status),
		RiderNearby: riderNearby,
		Version:     version,
	}
	if estimatedDeliveryTime.Valid {
		response.EstimatedDeliveryTime = estimatedDeliveryTime.Time
	}
	if courierID.Valid {
		parsed, idErr := kernel.UUIDFromBytes(courierID.V[:])
		if idErr != nil {
			return GetLiveETAQueryResponse{}, idErr
		}
		response.CourierID = &parsed
	}
	if lastLat.Valid && lastLng.Valid {
		position := PositionResponse{
			Latitude:  lastLat.Float64,
			Longitude: lastLng.Float64,
		}
		if lastHeading.Valid {
			position.Heading = lastHeading.Float64
		}
		if lastRecordedAt.Valid {
			position.RecordedAt = lastRecordedAt.Time
		}
		response.LastKnownPosition = &position
	}

	return response, nil
}
