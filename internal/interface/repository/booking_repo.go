package repository

import (
	"context"
	"errors"
	"time"

	"calassist-service/internal/domain/entity"
	"calassist-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormBookingRepository implements the BookingRepository interface
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GORM booking repository
func NewGormBookingRepository(db *gorm.DB) (repository.BookingRepository, error) {
	if err := db.AutoMigrate(&Bookings{}); err != nil {
		return nil, err
	}
	return &GormBookingRepository{
		db: db,
	}, nil
}

// Bookings GORM model for database mapping
type Bookings struct {
	ID        uint   `gorm:"primaryKey"`
	Summary   string `gorm:"column:summary"`
	EventID   string `gorm:"column:event_id"`
	StartTime string `gorm:"column:start_time;index"`
	EndTime   string `gorm:"column:end_time"`
	Timezone  string `gorm:"column:timezone"`
	Status    string `gorm:"column:status;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Bookings) TableName() string {
	return "bookings"
}

func toEntity(b *Bookings) *entity.Booking {
	return &entity.Booking{
		ID:        b.ID,
		Summary:   b.Summary,
		EventID:   b.EventID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Timezone:  b.Timezone,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// Save inserts a new ledger record and writes the generated ID back
func (r *GormBookingRepository) Save(ctx context.Context, booking *entity.Booking) error {
	model := Bookings{
		Summary:   booking.Summary,
		EventID:   booking.EventID,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Timezone:  booking.Timezone,
		Status:    booking.Status,
	}
	if model.Status == "" {
		model.Status = entity.StatusActive
	}

	result := r.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return result.Error
	}

	booking.ID = model.ID
	booking.Status = model.Status
	booking.CreatedAt = model.CreatedAt
	booking.UpdatedAt = model.UpdatedAt
	return nil
}

// List returns records ordered by start time. An empty status returns all
// records, cancelled ones included.
func (r *GormBookingRepository) List(ctx context.Context, status string) ([]*entity.Booking, error) {
	query := r.db.WithContext(ctx).Order("start_time asc")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var models []Bookings
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	bookings := make([]*entity.Booking, 0, len(models))
	for i := range models {
		bookings = append(bookings, toEntity(&models[i]))
	}
	return bookings, nil
}

// GetByID finds a booking by ledger ID, nil when no such record exists
func (r *GormBookingRepository) GetByID(ctx context.Context, id uint) (*entity.Booking, error) {
	var model Bookings
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return toEntity(&model), nil
}

// GetLastActive returns the most recently created active booking, nil when
// the ledger holds none.
func (r *GormBookingRepository) GetLastActive(ctx context.Context) (*entity.Booking, error) {
	var model Bookings
	result := r.db.WithContext(ctx).
		Where("status = ?", entity.StatusActive).
		Order("id desc").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return toEntity(&model), nil
}

// Cancel flips an active booking to cancelled. Cancelling a record that is
// missing or already cancelled changes nothing and returns no error.
func (r *GormBookingRepository) Cancel(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&Bookings{}).
		Where("id = ? AND status = ?", id, entity.StatusActive).
		Update("status", entity.StatusCancelled)
	return result.Error
}

// Update rewrites the mutable fields of an active booking. Like Cancel, it is
// a no-op for missing or cancelled records.
func (r *GormBookingRepository) Update(ctx context.Context, id uint, summary, startTime, endTime, timezone string) error {
	result := r.db.WithContext(ctx).
		Model(&Bookings{}).
		Where("id = ? AND status = ?", id, entity.StatusActive).
		Updates(map[string]interface{}{
			"summary":    summary,
			"start_time": startTime,
			"end_time":   endTime,
			"timezone":   timezone,
		})
	return result.Error
}
