// Package courierrepo provides data transfer objects and mapping functions
// for courier persistence: the courier row with its checkpointed position and
// sequence watermark, plus one child row per assigned order.
package courierrepo

import (
	"time"

	"tracking/internal/core/domain/model/courier"
	"tracking/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	LastLat        *float64
	LastLng        *float64
	LastHeading    *float64
	LastRecordedAt *time.Time
	LastSequence   int64

	AssignedOrders []CourierOrderDTO `gorm:"foreignKey:CourierID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for courier entities.
func (CourierDTO) TableName() string {
	return "couriers"
}

// CourierOrderDTO links a courier to one order it is currently delivering.
type CourierOrderDTO struct {
	CourierID uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName specifies the database table name for courier order assignments.
func (CourierOrderDTO) TableName() string {
	return "courier_orders"
}

// fromDomain converts a courier aggregate to its database representation.
func fromDomain(aggregate *courier.Courier) CourierDTO {
	courierID := aggregate.ID().Bytes()

	dto := CourierDTO{
		ID:           courierID,
		LastSequence: aggregate.LastSequence(),
	}

	if position := aggregate.LastPosition(); position != nil {
		lat := position.Point().Lat()
		lng := position.Point().Lng()
		heading := position.Heading()
		recordedAt := position.RecordedAt()
		dto.LastLat = &lat
		dto.LastLng = &lng
		dto.LastHeading = &heading
		dto.LastRecordedAt = &recordedAt
	}

	assigned := make([]CourierOrderDTO, 0, len(aggregate.AssignedOrders()))
	for _, orderID := range aggregate.AssignedOrders() {
		assigned = append(assigned, CourierOrderDTO{
			CourierID: courierID,
			OrderID:   orderID.Bytes(),
		})
	}
	dto.AssignedOrders = assigned

	return dto
}

// toDomain converts a database DTO to a courier aggregate using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var lastPosition *kernel.Position
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
		lastPosition = &position
	}

	assigned := make([]kernel.UUID, 0, len(dto.AssignedOrders))
	for _, link := range dto.AssignedOrders {
		orderID, linkErr := kernel.UUIDFromBytes(link.OrderID[:])
		if linkErr != nil {
			return nil, linkErr
		}
		assigned = append(assigned, orderID)
	}

	return courier.RestoreCourier(id, lastPosition, dto.LastSequence, assigned)
}
