package usecase

import (
	"context"
	"strconv"
	"strings"

	"clinic-booking-service/internal/converter"
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/domain/repository"
	"clinic-booking-service/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PatientUsecase interface {
	Register(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.PatientResponse, error)
}

type patientUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	patientRepo  repository.PatientRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	notifier     service.Notifier
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	notifier service.Notifier,
) PatientUsecase {
	return &patientUsecase{
		db:           db,
		log:          log,
		patientRepo:  patientRepo,
		userRepo:     userRepo,
		auditService: auditService,
		notifier:     notifier,
	}
}

// Register stores a patient and, when credentials are supplied, a patient
// login linked to it. Both rows are written in one transaction.
func (u *patientUsecase) Register(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.PatientResponse, error) {
	patient := &entity.Patient{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		Gender:     entity.Gender(req.Gender),
		Address:    req.Address,
		BloodGroup: req.BloodGroup,
	}

	if req.DateOfBirth != "" {
		dob, err := entity.ParseDate(req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		patient.DateOfBirth = &dob
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	var user *entity.User
	if req.Username != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			u.log.Warnf("Failed to hash password: %+v", err)
			return nil, err
		}

		patientID := patient.ID
		user = &entity.User{
			Username:  strings.TrimSpace(req.Username),
			Password:  string(hashedPassword),
			Role:      entity.RolePatient,
			PatientID: &patientID,
			IsActive:  true,
		}

		if err := u.userRepo.Create(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err, "username") {
				return nil, ErrUsernameExists
			}
			u.log.Warnf("Failed to create user: %+v", err)
			return nil, err
		}
	}

	var auditUser *uuid.UUID
	if user != nil {
		auditUser = &user.ID
	}
	if err := u.auditService.LogCreate(ctx, tx, auditUser, entity.AuditActionPatientRegister,
		"patient", strconv.Itoa(patient.ID), converter.PatientToResponse(patient)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{"patient_id": patient.ID, "with_login": user != nil}).Info("Patient registered")

	u.notifier.NotifyRegistration(patient)

	resp := converter.PatientToResponse(patient)
	if user != nil {
		resp.Username = user.Username
	}
	return resp, nil
}
