package queries

import (
	"context"
	"database/sql"
	"encoding/json"

	"tracking/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetOrderEventsQueryHandler reads the applied event log from the store.
type GetOrderEventsQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderEventsQueryHandler creates a handler for event log queries.
func NewGetOrderEventsQueryHandler(db *gorm.DB) GetOrderEventsQueryHandler {
	return GetOrderEventsQueryHandler{db: db}
}

// Handle returns every applied event for the order in application order.
func (h GetOrderEventsQueryHandler) Handle(
	ctx context.Context,
	query GetOrderEventsQuery,
) ([]OrderEventResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			kind,
			occurred_at,
			resulting_estimate,
			metadata
		FROM track_events
		WHERE order_id = ?
		ORDER BY seq
	`, query.OrderID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OrderEventResponse, 0)
	for rows.Next() {
		var event OrderEventResponse
		var kind string
		var rawMetadata sql.NullString

		if err = rows.Scan(&kind, &event.OccurredAt,
			&event.EstimatedDeliveryTime, &rawMetadata); err != nil {
			return nil, err
		}
		event.Kind = order.EventKind(kind)

		if rawMetadata.Valid && rawMetadata.String != "" {
			if err = json.Unmarshal([]byte(rawMetadata.String), &event.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
