package dto

import "time"

// Request DTOs

// RegisterPatientRequest registers a patient. Username and Password are
// optional and create a patient login when given.
type RegisterPatientRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,min=6,max=20"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,date"` // Format: YYYY-MM-DD
	Gender      string `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	Address     string `json:"address" validate:"omitempty"`
	BloodGroup  string `json:"blood_group" validate:"omitempty,max=5"`
	Username    string `json:"username" validate:"omitempty,min=3,max=255"`
	Password    string `json:"password" validate:"required_with=Username,omitempty,min=6"`
}

// Response DTOs

type PatientResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Address     string    `json:"address,omitempty"`
	BloodGroup  string    `json:"blood_group,omitempty"`
	Username    string    `json:"username,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
