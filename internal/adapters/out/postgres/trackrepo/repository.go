package trackrepo

import (
	"context"
	"errors"

	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTrackRepository implements TrackRepository using GORM.
type GormTrackRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormTrackRepository creates a new GORM track repository.
func NewGormTrackRepository(db *gorm.DB, tracker aggregateTracker) *GormTrackRepository {
	return &GormTrackRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new tracking record and its (usually empty) event history.
func (r *GormTrackRepository) Add(ctx context.Context, aggregate *order.Track) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err = r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing tracking record. The track row is rewritten in
// full; history rows are append-only, so existing event rows are left alone
// and only new ones are inserted.
func (r *GormTrackRepository) Update(ctx context.Context, aggregate *order.Track) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&TrackDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("Events", "id").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if len(dto.Events) > 0 {
		err = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&dto.Events).Error
		if err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a tracking record with its full event history.
func (r *GormTrackRepository) Get(ctx context.Context, orderID kernel.UUID) (*order.Track, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto TrackDTO
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		First(&dto, "id = ?", orderID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActive retrieves every track that has not reached a terminal state.
func (r *GormTrackRepository) GetAllActive(ctx context.Context) ([]*order.Track, error) {
	var dtos []TrackDTO
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Find(&dtos, "status NOT IN ?", []int{int(order.Delivered), int(order.Cancelled)}).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetAllActiveByCourier retrieves the courier's non-terminal tracks.
func (r *GormTrackRepository) GetAllActiveByCourier(
	ctx context.Context,
	courierID kernel.UUID,
) ([]*order.Track, error) {
	if err := courierID.Validate(); err != nil {
		return nil, err
	}

	var dtos []TrackDTO
	err := r.db.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		Find(&dtos, "courier_id = ? AND status NOT IN ?",
			courierID.Bytes(), []int{int(order.Delivered), int(order.Cancelled)}).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []TrackDTO) ([]*order.Track, error) {
	tracks := make([]*order.Track, 0, len(dtos))
	for _, dto := range dtos {
		track, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}
