package repository

import (
	"context"
	"errors"
	"time"

	"clinic-booking-service/internal/domain/entity"
	domainRepo "clinic-booking-service/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Save(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error) {
	return r.findByID(db.WithContext(ctx), id)
}

func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int) (*entity.Appointment, error) {
	query := db.WithContext(ctx)
	if isPostgres(db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findByID(query, id)
}

func (r *appointmentRepository) findByID(query *gorm.DB, id int) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := query.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, db *gorm.DB, doctorID int) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("id ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindWithFilter ANDs every predicate present on the filter.
// The date range is inclusive on both ends.
func (r *appointmentRepository) FindWithFilter(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).Model(&entity.Appointment{})

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.StartDate != nil {
			query = query.Where("appointment_date >= ?", entity.DateOnly(*filter.StartDate))
		}
		if filter.EndDate != nil {
			query = query.Where("appointment_date <= ?", entity.DateOnly(*filter.EndDate))
		}
	}

	err := query.Order("id ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountActiveForDoctorOnDate(ctx context.Context, db *gorm.DB, doctorID int, date time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?", doctorID, entity.DateOnly(date), entity.AppointmentStatusCancelled).
		Count(&count).Error
	return count, err
}

// LockDoctorDay takes a transaction-scoped advisory lock on Postgres.
// Other dialects have no equivalent and rely on their own write serialization.
func (r *appointmentRepository) LockDoctorDay(ctx context.Context, db *gorm.DB, doctorID int, date time.Time) error {
	if !isPostgres(db) {
		return nil
	}
	return db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", DoctorDayLockKey(doctorID, date)).Error
}

// DoctorDayLockKey packs the doctor id and the yyyymmdd date into one bigint.
func DoctorDayLockKey(doctorID int, date time.Time) int64 {
	d := entity.DateOnly(date)
	ymd := int64(d.Year()*10000 + int(d.Month())*100 + d.Day())
	return int64(doctorID)<<32 | ymd
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}
