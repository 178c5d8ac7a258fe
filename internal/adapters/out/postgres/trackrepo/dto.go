// Package trackrepo provides data transfer objects and mapping functions for
// tracking record persistence. It implements the repository pattern for the
// Track aggregate, converting between the domain model and the relational
// schema (one row per track, one child row per applied event).
package trackrepo

import (
	"encoding/json"
	"time"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// TrackDTO represents the database structure for persisting tracking records.
type TrackDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RestaurantID uuid.UUID  `gorm:"type:uuid;index"`
	CourierID    *uuid.UUID `gorm:"type:uuid;index"`

	RestaurantLat float64
	RestaurantLng float64
	CustomerLat   float64
	CustomerLng   float64

	Status                int `gorm:"index"`
	EstimatedDeliveryTime *time.Time
	BaseEstimateSeconds   int

	PrepSeconds           int
	PickupLegSeconds      int
	DeliveryLegSeconds    int
	FoodDelaySeconds      int
	TrafficPenaltySeconds int
	TrafficAppliedAt      *time.Time
	RiderNearby           bool

	LastLat        *float64
	LastLng        *float64
	LastHeading    *float64
	LastRecordedAt *time.Time

	Version int64

	Events []TrackEventDTO `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for tracking records.
func (TrackDTO) TableName() string {
	return "tracks"
}

// TrackEventDTO represents one applied event row. Seq is the 1-based position
// in the order's history; the pair (OrderID, Seq) is the primary key.
type TrackEventDTO struct {
	OrderID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq               int       `gorm:"primaryKey"`
	Kind              string    `gorm:"type:varchar(64);not null"`
	OccurredAt        time.Time `gorm:"not null"`
	ResultingEstimate time.Time
	Metadata          string `gorm:"type:text"`
}

// TableName specifies the database table name for applied events.
func (TrackEventDTO) TableName() string {
	return "track_events"
}

// fromDomain converts a tracking record to its database representation.
func fromDomain(track *order.Track) (TrackDTO, error) {
	dto := TrackDTO{
		ID:                  track.ID().Bytes(),
		RestaurantID:        track.RestaurantID().Bytes(),
		RestaurantLat:       track.RestaurantLocation().Lat(),
		RestaurantLng:       track.RestaurantLocation().Lng(),
		CustomerLat:         track.CustomerLocation().Lat(),
		CustomerLng:         track.CustomerLocation().Lng(),
		Status:              int(track.Status()),
		BaseEstimateSeconds: track.BaseEstimateSeconds(),
		RiderNearby:         track.RiderNearby(),
		Version:             track.Version(),
	}

	if courierID := track.CourierID(); courierID != nil {
		raw := courierID.Bytes()
		dto.CourierID = &raw
	}
	if estimate := track.EstimatedDeliveryTime(); !estimate.IsZero() {
		dto.EstimatedDeliveryTime = &estimate
	}

	state := track.EstimateStateSnapshot()
	dto.PrepSeconds = state.PrepSeconds
	dto.PickupLegSeconds = state.PickupLegSeconds
	dto.DeliveryLegSeconds = state.DeliveryLegSeconds
	dto.FoodDelaySeconds = state.FoodDelaySeconds
	dto.TrafficPenaltySeconds = state.TrafficPenaltySeconds
	if !state.TrafficAppliedAt.IsZero() {
		appliedAt := state.TrafficAppliedAt
		dto.TrafficAppliedAt = &appliedAt
	}

	if position := track.LastKnownPosition(); position != nil {
		lat := position.Point().Lat()
		lng := position.Point().Lng()
		heading := position.Heading()
		recordedAt := position.RecordedAt()
		dto.LastLat = &lat
		dto.LastLng = &lng
		dto.LastHeading = &heading
		dto.LastRecordedAt = &recordedAt
	}

	events := make([]TrackEventDTO, 0, len(track.History()))
	for i, entry := range track.History() {
		eventDTO := TrackEventDTO{
			OrderID:           dto.ID,
			Seq:               i + 1,
			Kind:              string(entry.Kind),
			OccurredAt:        entry.Timestamp,
			ResultingEstimate: entry.ResultingEstimate,
		}
		if len(entry.Metadata) > 0 {
			raw, err := json.Marshal(entry.Metadata)
			if err != nil {
				return TrackDTO{}, err
			}
			eventDTO.Metadata = string(raw)
		}
		events = append(events, eventDTO)
	}
	dto.Events = events

	return dto, nil
}

// toDomain converts a database DTO back to a tracking record using
// RestoreTrack. Events must already be loaded and ordered by Seq.
func toDomain(dto TrackDTO) (*order.Track, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	restaurantLocation, err := kernel.NewGeoPoint(dto.RestaurantLat, dto.RestaurantLng)
	if err != nil {
		return nil, err
	}
	customerLocation, err := kernel.NewGeoPoint(dto.CustomerLat, dto.CustomerLng)
	if err != nil {
		return nil, err
	}

	var estimatedDeliveryTime time.Time
	if dto.EstimatedDeliveryTime != nil {
		estimatedDeliveryTime = *dto.EstimatedDeliveryTime
	}

	state := order.EstimateState{
		PrepSeconds:           dto.PrepSeconds,
		PickupLegSeconds:      dto.PickupLegSeconds,
		DeliveryLegSeconds:    dto.DeliveryLegSeconds,
		FoodDelaySeconds:      dto.FoodDelaySeconds,
		TrafficPenaltySeconds: dto.TrafficPenaltySeconds,
		RiderNearby:           dto.RiderNearby,
	}
	if dto.TrafficAppliedAt != nil {
		state.TrafficAppliedAt = *dto.TrafficAppliedAt
	}

	var lastKnownPosition *kernel.Position
	if dto.LastLat != nil && dto.LastLng != nil && dto.LastRecordedAt != nil {
		heading := 0.0
		if dto.LastHeading != nil {
			heading = *dto.LastHeading
		}
		point, posErr := kernel.NewGeoPoint(*dto.LastLat, *dto.LastLng)
		if posErr != nil {
			return nil, posErr
		}
		position, posErr := kernel.NewPosition(point, heading, *dto.LastRecordedAt)
		if posErr != nil {
			return nil, posErr
		}
		lastKnownPosition = &position
	}

	history := make([]order.HistoryEntry, 0, len(dto.Events))
	for _, eventDTO := range dto.Events {
		entry := order.HistoryEntry{
			Kind:              order.EventKind(eventDTO.Kind),
			Timestamp:         eventDTO.OccurredAt,
			ResultingEstimate: eventDTO.ResultingEstimate,
		}
		if eventDTO.Metadata != "" {
			if err = json.Unmarshal([]byte(eventDTO.Metadata), &entry.Metadata); err != nil {
				return nil, err
			}
		}
		history = append(history, entry)
	}

	return order.RestoreTrack(
		id, restaurantID, courierID,
		restaurantLocation, customerLocation,
		order.Status(dto.Status), estimatedDeliveryTime, dto.BaseEstimateSeconds,
		state, lastKnownPosition, history, dto.Version,
	)
}
