package queries

import (
	"context"

	"tracking/internal/core/domain/model/order"

	"gorm.io/gorm"
)

// GetETAHistoryQueryHandler reads the estimate timeline from the store.
type GetETAHistoryQueryHandler struct {
	db *gorm.DB
}

// NewGetETAHistoryQueryHandler creates a handler for history queries.
func NewGetETAHistoryQueryHandler(db *gorm.DB) GetETAHistoryQueryHandler {
	return GetETAHistoryQueryHandler{db: db}
}

// Handle returns one page of the order's estimate history, oldest first.
// An unknown order yields an empty page, not an error: history is empty
// before the first event either way.
func (h GetETAHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetETAHistoryQuery,
) (GetETAHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetETAHistoryQueryResponse{}, err
	}

	response := GetETAHistoryQueryResponse{
		Entries:  make([]ETAHistoryEntryResponse, 0, query.PageSize()),
		Page:     query.Page(),
		PageSize: query.PageSize(),
	}

	err := h.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM track_events
		WHERE order_id = ?
	`, query.OrderID().String()).Scan(&response.Total).Error
	if err != nil {
		return GetETAHistoryQueryResponse{}, err
	}

	offset := (query.Page() - 1) * query.PageSize()
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			kind,
			occurred_at,
			resulting_estimate
		FROM track_events
		WHERE order_id = ?
		ORDER BY seq
		LIMIT ? OFFSET ?
	`, query.OrderID().String(), query.PageSize(), offset).Rows()
	if err != nil {
		return GetETAHistoryQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var entry ETAHistoryEntryResponse
		var kind string

		if err = rows.Scan(&kind, &entry.OccurredAt, &entry.EstimatedDeliveryTime); err != nil {
			return GetETAHistoryQueryResponse{}, err
		}
		entry.Kind = order.EventKind(kind)
		response.Entries = append(response.Entries, entry)
	}

	if err = rows.Err(); err != nil {
		return GetETAHistoryQueryResponse{}, err
	}

	return response, nil
}
