package repository

import (
	"context"
	"errors"
	"strings"

	"clinic-booking-service/internal/domain/entity"
	domainRepo "clinic-booking-service/internal/domain/repository"

	"gorm.io/gorm"
)

type doctorRepository struct{}

func NewDoctorRepository() domainRepo.DoctorRepository {
	return &doctorRepository{}
}

func (r *doctorRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := db.WithContext(ctx).Where("name = ?", name).Order("id ASC").First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Doctor, error) {
	var doctors []entity.Doctor
	err := db.WithContext(ctx).Order("id ASC").Find(&doctors).Error
	if err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) FindByDepartment(ctx context.Context, db *gorm.DB, department string) ([]entity.Doctor, error) {
	term := strings.ToLower(strings.TrimSpace(department))
	if term == "" {
		return []entity.Doctor{}, nil
	}
	contains := "%" + term + "%"

	// Seeds sometimes carry the department in specialty, so it is tried last
	attempts := []struct {
		query string
		arg   string
	}{
		{"LOWER(department) = ?", term},
		{"LOWER(department) LIKE ?", contains},
		{"LOWER(specialty) = ?", term},
		{"LOWER(specialty) LIKE ?", contains},
	}

	for _, attempt := range attempts {
		var doctors []entity.Doctor
		if err := db.WithContext(ctx).Where(attempt.query, attempt.arg).Order("id ASC").Find(&doctors).Error; err != nil {
			return nil, err
		}
		if len(doctors) > 0 {
			return doctors, nil
		}
	}
	return []entity.Doctor{}, nil
}
