package entity

import "time"

// AppointmentFilter is a domain-level filter for querying appointments.
// Nil fields impose no constraint; the date range is inclusive.
type AppointmentFilter struct {
	DoctorID  *int
	PatientID *int
	Status    *AppointmentStatus
	StartDate *time.Time
	EndDate   *time.Time
}
