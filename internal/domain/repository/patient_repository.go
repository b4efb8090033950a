package repository

import (
	"context"

	"clinic-booking-service/internal/domain/entity"

	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Patient, error)
	Exists(ctx context.Context, db *gorm.DB, id int) (bool, error)
}
