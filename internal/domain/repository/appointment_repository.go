package repository

import (
	"context"
	"time"

	"clinic-booking-service/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error)
	FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID int) ([]entity.Appointment, error)
	FindWithFilter(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	CountActiveForDoctorOnDate(ctx context.Context, db *gorm.DB, doctorID int, date time.Time) (int64, error)
	// LockDoctorDay serializes capacity decisions for one doctor on one date
	// until the surrounding transaction ends.
	LockDoctorDay(ctx context.Context, db *gorm.DB, doctorID int, date time.Time) error
}
