package http

import "time"

// Error is the uniform error body returned by all endpoints.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Point is a coordinate pair in request and response bodies.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// StartTrackingRequest opens a tracking record for an order.
type StartTrackingRequest struct {
	OrderID            string `json:"order_id"`
	RestaurantID       string `json:"restaurant_id"`
	RestaurantLocation Point  `json:"restaurant_location"`
	CustomerLocation   Point  `json:"customer_location"`
}

// SubmitEventRequest carries one lifecycle event for an order.
type SubmitEventRequest struct {
	Kind      string            `json:"kind"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// SubmitEventResponse reports the committed outcome of an event submission.
type SubmitEventResponse struct {
	Status                string    `json:"status"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
	EstimateSeconds       int       `json:"estimate_seconds"`
	Duplicate             bool      `json:"duplicate"`
}

// RecalculateResponse reports the refreshed estimate.
type RecalculateResponse struct {
	Status                string    `json:"status"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
	EstimateSeconds       int       `json:"estimate_seconds"`
	Changed               bool      `json:"changed"`
}

// PositionBody is a courier position in responses.
type PositionBody struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
}

// LiveETAResponse is the current tracking snapshot for an order.
type LiveETAResponse struct {
	OrderID               string        `json:"order_id"`
	Status                string        `json:"status"`
	EstimatedDeliveryTime time.Time     `json:"estimated_delivery_time"`
	RiderNearby           bool          `json:"rider_nearby"`
	CourierID             *string       `json:"courier_id,omitempty"`
	LastKnownPosition     *PositionBody `json:"last_known_position,omitempty"`
	Version               int64         `json:"version"`
}

// ETAHistoryEntry is one estimate change in the order's timeline.
type ETAHistoryEntry struct {
	Kind                  string    `json:"kind"`
	OccurredAt            time.Time `json:"occurred_at"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
}

// ETAHistoryResponse is one page of the estimate timeline.
type ETAHistoryResponse struct {
	Entries  []ETAHistoryEntry `json:"entries"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// OrderEventBody is one applied event with its metadata.
type OrderEventBody struct {
	Kind                  string            `json:"kind"`
	OccurredAt            time.Time         `json:"occurred_at"`
	EstimatedDeliveryTime time.Time         `json:"estimated_delivery_time"`
	Metadata              map[string]string `json:"metadata,omitempty"`
}

// ETAPreviewRequest asks for an estimate before tracking starts.
type ETAPreviewRequest struct {
	RestaurantLocation Point `json:"restaurant_location"`
	CustomerLocation   Point `json:"customer_location"`
	PrepSeconds        int   `json:"prep_seconds,omitempty"`
}

// ETAPreviewResponse is the previewed estimate.
type ETAPreviewResponse struct {
	EstimateSeconds       int       `json:"estimate_seconds"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
}

// ReportPositionRequest carries one courier position tick.
type ReportPositionRequest struct {
	Sequence   int64     `json:"sequence"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ReportPositionResponse reports whether the tick was applied or dropped as stale.
type ReportPositionResponse struct {
	Applied bool `json:"applied"`
	Dropped bool `json:"dropped"`
}
