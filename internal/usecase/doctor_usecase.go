package usecase

import (
	"context"
	"strings"

	"clinic-booking-service/internal/converter"
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DoctorUsecase interface {
	GetByID(ctx context.Context, id int) (*dto.DoctorResponse, error)
	GetByName(ctx context.Context, name string) (*dto.DoctorResponse, error)
	List(ctx context.Context) (*dto.DoctorListResponse, error)
	// ListByDepartment is the picker patients use before booking
	ListByDepartment(ctx context.Context, department string) (*dto.DoctorListResponse, error)
	// Me returns the doctor record the logged-in account is linked to
	Me(ctx context.Context, actor entity.Actor) (*dto.DoctorMeResponse, error)
}

type doctorUsecase struct {
	db         *gorm.DB
	log        *logrus.Logger
	doctorRepo repository.DoctorRepository
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
) DoctorUsecase {
	return &doctorUsecase{
		db:         db,
		log:        log,
		doctorRepo: doctorRepo,
	}
}

func (u *doctorUsecase) GetByID(ctx context.Context, id int) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorRecordMissing
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetByName(ctx context.Context, name string) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByName(ctx, u.db, strings.TrimSpace(name))
	if err != nil {
		u.log.Warnf("Failed to find doctor by name: %+v", err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorRecordMissing
	}

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) List(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to find doctors: %+v", err)
		return nil, err
	}

	return converter.DoctorsToListResponse(doctors), nil
}

func (u *doctorUsecase) ListByDepartment(ctx context.Context, department string) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindByDepartment(ctx, u.db, department)
	if err != nil {
		u.log.Warnf("Failed to find doctors of department %q: %+v", department, err)
		return nil, err
	}

	return converter.DoctorsToListResponse(doctors), nil
}

func (u *doctorUsecase) Me(ctx context.Context, actor entity.Actor) (*dto.DoctorMeResponse, error) {
	if actor.Role != entity.RoleDoctor || actor.ID == 0 {
		return nil, ErrNotADoctor
	}

	doctor, err := u.doctorRepo.FindByID(ctx, u.db, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", actor.ID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorRecordMissing
	}

	return converter.DoctorToMeResponse(doctor), nil
}
