package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID       int    `json:"patient_id" validate:"required,min=1"`
	DoctorID        int    `json:"doctor_id" validate:"required,min=1"`
	Department      string `json:"department" validate:"omitempty,max=100"`
	AppointmentDate string `json:"appointment_date" validate:"required,date"` // Format: YYYY-MM-DD
	AppointmentTime string `json:"appointment_time" validate:"required,clock"` // Format: HH:MM
	Status          string `json:"status" validate:"omitempty"`
	Reason          string `json:"reason" validate:"omitempty,max=1000"`
}

type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" validate:"required,date"`
	AppointmentTime string `json:"appointment_time" validate:"required,clock"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AppointmentFilterRequest holds the optional search predicates.
// Empty strings and nil pointers are ignored.
type AppointmentFilterRequest struct {
	DoctorID  *int
	PatientID *int
	Status    string
	StartDate string
	EndDate   string
}

// Response DTOs

type AppointmentResponse struct {
	ID              int       `json:"id"`
	PatientID       int       `json:"patient_id"`
	DoctorID        int       `json:"doctor_id"`
	Department      string    `json:"department"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
