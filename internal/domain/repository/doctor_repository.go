package repository

import (
	"context"

	"clinic-booking-service/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Doctor, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Doctor, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Doctor, error)
	// FindByDepartment matches department exactly, then by substring, then
	// falls back to specialty the same way. Matching ignores case.
	FindByDepartment(ctx context.Context, db *gorm.DB, department string) ([]entity.Doctor, error)
}
