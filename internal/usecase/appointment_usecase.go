package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-booking-service/internal/converter"
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/domain/policy"
	"clinic-booking-service/internal/domain/repository"
	"clinic-booking-service/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const appointmentEntity = "appointment"

type AppointmentUsecase interface {
	Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, id int, actor entity.Actor) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, id int, actor entity.Actor, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id int, actor entity.Actor, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	// GetByID skips the ownership check when actor is nil
	GetByID(ctx context.Context, id int, actor *entity.Actor) (*dto.AppointmentResponse, error)
	Filter(ctx context.Context, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
	ListForDoctor(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	doctorRepo      repository.DoctorRepository
	auditService    service.AuditService
	capacityGuard   service.CapacityGuard
	notifier        service.Notifier
	policy          policy.Policy
	loc             *time.Location
	now             func() time.Time
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
	capacityGuard service.CapacityGuard,
	notifier service.Notifier,
	schedulePolicy policy.Policy,
	loc *time.Location,
) AppointmentUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		auditService:    auditService,
		capacityGuard:   capacityGuard,
		notifier:        notifier,
		policy:          schedulePolicy,
		loc:             loc,
		now:             time.Now,
	}
}

func (u *appointmentUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	// Patients book for themselves only
	if actor.Role == entity.RolePatient && actor.ID != req.PatientID {
		return nil, ErrAccessDenied
	}

	date, err := entity.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	clock, err := entity.ParseClockTime(req.AppointmentTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	exists, err := u.patientRepo.Exists(ctx, tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to check patient %d: %+v", req.PatientID, err)
		return nil, err
	}
	if !exists {
		return nil, ErrPatientNotFound
	}

	status := entity.AppointmentStatusScheduled
	if strings.TrimSpace(req.Status) != "" {
		parsed, ok := entity.ParseAppointmentStatus(req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	if !u.policy.IsBookable(date, clock) {
		return nil, outOfSchedule(date)
	}

	doctor, err := u.doctorRepo.FindByID(ctx, tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	if err := u.appointmentRepo.LockDoctorDay(ctx, tx, doctor.ID, date); err != nil {
		u.log.Warnf("Failed to lock doctor %d on %s: %+v", doctor.ID, date.Format(entity.DateLayout), err)
		return nil, err
	}

	capacity := u.policy.CreateCapacity(doctor.Department)
	booked, err := u.appointmentRepo.CountActiveForDoctorOnDate(ctx, tx, doctor.ID, date)
	if err != nil {
		u.log.Warnf("Failed to count appointments of doctor %d: %+v", doctor.ID, err)
		return nil, err
	}
	if booked >= int64(capacity) {
		return nil, ErrDailyLimitReached
	}

	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = doctor.Department
	}

	appointment := &entity.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        doctor.ID,
		Department:      department,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          status,
		Reason:          strings.TrimSpace(req.Reason),
	}

	if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actor.AuditUserID(), entity.AuditActionAppointmentCreate,
		appointmentEntity, service.AppointmentEntityID(appointment.ID), converter.AppointmentAuditValue(appointment)); err != nil {
		return nil, err
	}

	// Only active appointments occupy a slot
	reserved := false
	if status.IsActive() {
		reserved, err = u.reserveSlot(ctx, doctor.ID, date, capacity, booked)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		if reserved {
			u.releaseSlot(ctx, doctor.ID, date)
		}
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"patient_id":     appointment.PatientID,
		"doctor_id":      appointment.DoctorID,
		"date":           date.Format(entity.DateLayout),
	}).Info("Appointment booked")

	u.notifier.NotifyBooked(appointment)

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Cancel(ctx context.Context, id int, actor entity.Actor) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.BelongsTo(actor) {
		return nil, ErrAccessDenied
	}
	if appointment.Status.IsTerminal() {
		return nil, terminalError(appointment.Status)
	}

	oldValue := converter.AppointmentAuditValue(appointment)
	appointment.Cancel()

	if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to cancel appointment %d: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, actor.AuditUserID(), entity.AuditActionAppointmentCancel,
		appointmentEntity, service.AppointmentEntityID(id), oldValue, converter.AppointmentAuditValue(appointment)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.releaseSlot(ctx, appointment.DoctorID, appointment.AppointmentDate)
	u.log.WithFields(logrus.Fields{"appointment_id": id, "role": actor.Role}).Info("Appointment cancelled")

	u.notifier.NotifyCancelled(appointment)

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Reschedule(ctx context.Context, id int, actor entity.Actor, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	newDate, err := entity.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}
	newTime, err := entity.ParseClockTime(req.AppointmentTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.BelongsTo(actor) {
		return nil, ErrAccessDenied
	}
	if appointment.Status.IsTerminal() {
		return nil, terminalError(appointment.Status)
	}

	moved := *appointment
	moved.AppointmentDate = newDate
	moved.AppointmentTime = newTime
	if moved.StartsAt(u.loc).Before(u.now().In(u.loc)) {
		return nil, ErrPastDateTime
	}
	if !u.policy.IsBookable(newDate, newTime) {
		return nil, outOfSchedule(newDate)
	}

	doctor, err := u.doctorRepo.FindByID(ctx, tx, appointment.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", appointment.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	oldDate := entity.DateOnly(appointment.AppointmentDate)
	oldTime := appointment.AppointmentTime
	dateChanged := !oldDate.Equal(newDate)

	capacity := u.policy.RescheduleCapacity(doctor.Department)
	var booked int64
	if dateChanged {
		// Ascending date order keeps two reschedules in opposite directions from deadlocking
		first, second := oldDate, newDate
		if second.Before(first) {
			first, second = second, first
		}
		for _, day := range []time.Time{first, second} {
			if err := u.appointmentRepo.LockDoctorDay(ctx, tx, doctor.ID, day); err != nil {
				u.log.Warnf("Failed to lock doctor %d on %s: %+v", doctor.ID, day.Format(entity.DateLayout), err)
				return nil, err
			}
		}

		booked, err = u.appointmentRepo.CountActiveForDoctorOnDate(ctx, tx, doctor.ID, newDate)
		if err != nil {
			u.log.Warnf("Failed to count appointments of doctor %d: %+v", doctor.ID, err)
			return nil, err
		}
		if booked >= int64(capacity) {
			return nil, ErrDailyLimitReached
		}
	}

	oldValue := converter.AppointmentAuditValue(appointment)
	appointment.AppointmentDate = newDate
	appointment.AppointmentTime = newTime

	if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to reschedule appointment %d: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, actor.AuditUserID(), entity.AuditActionAppointmentReschedule,
		appointmentEntity, service.AppointmentEntityID(id), oldValue, converter.AppointmentAuditValue(appointment)); err != nil {
		return nil, err
	}

	reserved := false
	if dateChanged {
		reserved, err = u.reserveSlot(ctx, doctor.ID, newDate, capacity, booked)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		if reserved {
			u.releaseSlot(ctx, doctor.ID, newDate)
		}
		return nil, err
	}

	if dateChanged {
		u.releaseSlot(ctx, doctor.ID, oldDate)
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": id,
		"from":           oldDate.Format(entity.DateLayout) + " " + oldTime.String(),
		"to":             newDate.Format(entity.DateLayout) + " " + newTime.String(),
	}).Info("Appointment rescheduled")

	u.notifier.NotifyRescheduled(appointment, oldDate, oldTime)

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id int, actor entity.Actor, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}

	newStatus, ok := entity.ParseAppointmentStatus(req.Status)
	if appointment.IsCompleted() && newStatus != entity.AppointmentStatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	if !ok {
		return nil, ErrInvalidStatus
	}

	if actor.Role == entity.RolePatient {
		if !appointment.BelongsTo(actor) {
			return nil, ErrAccessDenied
		}
		if newStatus != entity.AppointmentStatusCancelled {
			return nil, ErrForbiddenTransition
		}
	}

	// Setting the current status again changes nothing
	if appointment.Status == newStatus {
		return converter.AppointmentToResponse(appointment), nil
	}

	oldStatus := appointment.Status
	oldValue := converter.AppointmentAuditValue(appointment)
	appointment.Status = newStatus

	if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to update status of appointment %d: %+v", id, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, actor.AuditUserID(), entity.AuditActionAppointmentStatus,
		appointmentEntity, service.AppointmentEntityID(id), oldValue, converter.AppointmentAuditValue(appointment)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if newStatus == entity.AppointmentStatusCancelled {
		u.releaseSlot(ctx, appointment.DoctorID, appointment.AppointmentDate)
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": id,
		"from":           oldStatus,
		"to":             newStatus,
		"role":           actor.Role,
	}).Info("Appointment status updated")

	u.notifier.NotifyStatusChanged(appointment, oldStatus)

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id int, actor *entity.Actor) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if actor != nil && !appointment.BelongsTo(*actor) {
		return nil, ErrAccessDenied
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) Filter(ctx context.Context, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	filter := &entity.AppointmentFilter{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
	}

	if strings.TrimSpace(req.Status) != "" {
		status, ok := entity.ParseAppointmentStatus(req.Status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
	}
	if strings.TrimSpace(req.StartDate) != "" {
		start, err := entity.ParseDate(req.StartDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		filter.StartDate = &start
	}
	if strings.TrimSpace(req.EndDate) != "" {
		end, err := entity.ParseDate(req.EndDate)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, ErrInvalidDateRange
	}

	appointments, err := u.appointmentRepo.FindWithFilter(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to filter appointments: %+v", err)
		return nil, err
	}

	return converter.AppointmentsToListResponse(appointments), nil
}

func (u *appointmentUsecase) ListForDoctor(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	if actor.Role != entity.RoleDoctor || actor.ID == 0 {
		return nil, ErrNotADoctor
	}

	appointments, err := u.appointmentRepo.FindByDoctorID(ctx, u.db, actor.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments of doctor %d: %+v", actor.ID, err)
		return nil, err
	}

	return converter.AppointmentsToListResponse(appointments), nil
}

// reserveSlot takes a slot in the capacity guard. A full guard rejects the
// booking; any other guard failure is logged and the database check stands.
func (u *appointmentUsecase) reserveSlot(ctx context.Context, doctorID int, date time.Time, capacity int, booked int64) (bool, error) {
	err := u.capacityGuard.Reserve(ctx, doctorID, date, capacity, booked)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, service.ErrCapacityFull) {
		return false, ErrDailyLimitReached
	}
	u.log.Warnf("Capacity guard unavailable for doctor %d on %s: %+v", doctorID, date.Format(entity.DateLayout), err)
	return false, nil
}

// terminalError picks the rejection for an appointment that can no longer change
func terminalError(status entity.AppointmentStatus) error {
	if status == entity.AppointmentStatusCancelled {
		return ErrAlreadyCancelled
	}
	return ErrAlreadyCompleted
}

// outOfSchedule names the opening hours of the requested day
func outOfSchedule(date time.Time) error {
	day := date.Weekday()
	return ErrOutOfSchedule.WithMessage(fmt.Sprintf("appointment time is outside working hours, %s runs %s to %s",
		day, policy.OpeningTime(day), policy.ClosingTime(day)))
}

func (u *appointmentUsecase) releaseSlot(ctx context.Context, doctorID int, date time.Time) {
	if err := u.capacityGuard.Release(ctx, doctorID, date); err != nil {
		u.log.Warnf("Failed to release slot of doctor %d on %s: %+v", doctorID, date.Format(entity.DateLayout), err)
	}
}
