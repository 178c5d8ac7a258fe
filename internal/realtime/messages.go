package realtime

import (
	"time"

	"tracking/internal/core/ports"
)

// MessageType tags the wire messages pushed to subscribers.
type MessageType string

const (
	MessageTypeSnapshot MessageType = "snapshot"
	MessageTypeETA      MessageType = "eta_update"
	MessageTypePosition MessageType = "position_update"
)

// PositionPayload is a courier position on the wire.
type PositionPayload struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Message is the envelope delivered to subscribers. Fields irrelevant to the
// message type are omitted from the encoding.
type Message struct {
	Type                  MessageType      `json:"type"`
	OrderID               string           `json:"order_id,omitempty"`
	CourierID             string           `json:"courier_id,omitempty"`
	Status                string           `json:"status,omitempty"`
	Event                 string           `json:"event,omitempty"`
	EstimatedDeliveryTime *time.Time       `json:"estimated_delivery_time,omitempty"`
	EstimateSeconds       int              `json:"estimate_seconds,omitempty"`
	RiderNearby           bool             `json:"rider_nearby,omitempty"`
	Position              *PositionPayload `json:"position,omitempty"`
	Sequence              int64            `json:"sequence,omitempty"`
	SentAt                time.Time        `json:"sent_at"`
}

func etaMessage(update ports.ETAUpdate, sentAt time.Time) Message {
	estimate := update.EstimatedDeliveryTime
	return Message{
		Type:                  MessageTypeETA,
		OrderID:               update.OrderID.String(),
		Status:                update.Status.String(),
		Event:                 string(update.EventKind),
		EstimatedDeliveryTime: &estimate,
		EstimateSeconds:       update.EstimateSeconds,
		SentAt:                sentAt,
	}
}

func positionMessage(update ports.PositionUpdate, sentAt time.Time) Message {
	point := update.Position.Point()
	return Message{
		Type:      MessageTypePosition,
		CourierID: update.CourierID.String(),
		Position: &PositionPayload{
			Latitude:   point.Lat(),
			Longitude:  point.Lng(),
			Heading:    update.Position.Heading(),
			RecordedAt: update.Position.RecordedAt(),
		},
		Sequence: update.Sequence,
		SentAt:   sentAt,
	}
}
