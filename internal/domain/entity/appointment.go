package entity

import (
	"strings"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "Scheduled"
	AppointmentStatusPending    AppointmentStatus = "Pending"
	AppointmentStatusInProgress AppointmentStatus = "In Progress"
	AppointmentStatusCompleted  AppointmentStatus = "Completed"
	AppointmentStatusCancelled  AppointmentStatus = "Cancelled"
)

var appointmentStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusPending,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
}

// ParseAppointmentStatus maps free text onto the canonical status.
// Matching ignores case, spaces, underscores and hyphens.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	key := foldStatus(s)
	if key == "" {
		return "", false
	}
	for _, status := range appointmentStatuses {
		if foldStatus(string(status)) == key {
			return status, true
		}
	}
	return "", false
}

func foldStatus(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(s))
}

// IsTerminal reports whether no further transitions are allowed
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// IsActive reports whether the appointment occupies a doctor's daily slot
func (s AppointmentStatus) IsActive() bool {
	return s != AppointmentStatusCancelled
}

// Appointment represents a booked visit of a patient with a doctor
type Appointment struct {
	ID              int               `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID       int               `gorm:"not null;index" json:"patient_id"`
	DoctorID        int               `gorm:"not null;index:idx_appointments_doctor_date" json:"doctor_id"`
	Department      string            `gorm:"type:varchar(100)" json:"department"`
	AppointmentDate time.Time         `gorm:"type:date;not null;index:idx_appointments_doctor_date" json:"appointment_date"`
	AppointmentTime ClockTime         `gorm:"type:time;not null" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'Scheduled';index" json:"status"`
	Reason          string            `gorm:"type:text" json:"reason"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// Cancel changes appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}

// BelongsTo reports whether the actor is the patient or doctor on the appointment.
// Roles other than patient and doctor are not restricted.
func (a *Appointment) BelongsTo(actor Actor) bool {
	switch actor.Role {
	case RolePatient:
		return a.PatientID == actor.ID
	case RoleDoctor:
		return a.DoctorID == actor.ID
	default:
		return true
	}
}

// StartsAt is the wall-clock start of the appointment in loc
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.AppointmentTime.On(a.AppointmentDate, loc)
}
