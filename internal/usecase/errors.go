package usecase

import (
	"errors"
	"net/http"
	"strings"

	"clinic-booking-service/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrAppointmentNotFound = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "appointment not found")
	ErrPatientNotFound     = apperror.New(http.StatusUnprocessableEntity, apperror.CodePatientNotFound, "patient not found")
	ErrDoctorNotFound      = apperror.New(http.StatusUnprocessableEntity, apperror.CodeDoctorNotFound, "doctor not found")
	ErrOutOfSchedule       = apperror.New(http.StatusBadRequest, apperror.CodeOutOfSchedule, "appointment time is outside working hours")
	ErrDailyLimitReached   = apperror.New(http.StatusBadRequest, apperror.CodeDailyLimitReached, "doctor has reached the daily appointment limit")
	ErrPastDateTime        = apperror.New(http.StatusBadRequest, apperror.CodePastDateTime, "cannot reschedule to a past date and time")
	ErrInvalidStatus       = apperror.New(http.StatusBadRequest, apperror.CodeInvalidStatus, "invalid appointment status")
	ErrAlreadyCancelled    = apperror.New(http.StatusBadRequest, apperror.CodeAlreadyCancelled, "appointment is already cancelled")
	ErrAlreadyCompleted    = apperror.New(http.StatusBadRequest, apperror.CodeAlreadyCompleted, "appointment is already completed")
	ErrAccessDenied        = apperror.New(http.StatusForbidden, apperror.CodeAccessDenied, "you do not have access to this appointment")
	ErrForbiddenTransition = apperror.New(http.StatusForbidden, apperror.CodeForbiddenTransition, "patients may only cancel appointments")
	ErrInvalidDateFormat   = apperror.InvalidPayload("invalid date format, use YYYY-MM-DD")
	ErrInvalidTimeFormat   = apperror.InvalidPayload("invalid time format, use HH:MM")
	ErrInvalidDateRange    = apperror.InvalidPayload("start_date must not be after end_date")

	ErrInvalidCredentials  = apperror.New(http.StatusUnauthorized, apperror.CodeUnauthorized, "invalid username or password")
	ErrInvalidToken        = apperror.New(http.StatusUnauthorized, apperror.CodeUnauthorized, "invalid or expired token")
	ErrTokenRevoked        = apperror.New(http.StatusUnauthorized, apperror.CodeUnauthorized, "token has been revoked")
	ErrAccountDisabled     = apperror.New(http.StatusUnauthorized, apperror.CodeUnauthorized, "account is disabled")
	ErrUserNotFound        = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "user not found")
	ErrUsernameExists      = apperror.New(http.StatusConflict, apperror.CodeConflict, "username already exists")
	ErrInvalidRole         = apperror.InvalidPayload("role must be one of admin, staff, doctor, patient")
	ErrAccountLinkRequired = apperror.InvalidPayload("doctor accounts need doctor_id and patient accounts need patient_id")
	ErrNotADoctor          = apperror.New(http.StatusForbidden, apperror.CodeAccessDenied, "account is not linked to a doctor")
	ErrAuditLogNotFound    = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "audit log not found")
	ErrDoctorRecordMissing = apperror.New(http.StatusNotFound, apperror.CodeNotFound, "doctor not found")
)

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	// sqlite reports "UNIQUE constraint failed: users.username"
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") &&
		strings.Contains(strings.ToLower(err.Error()), strings.ToLower(constraintName))
}
