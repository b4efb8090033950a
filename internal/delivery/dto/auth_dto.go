package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateUserRequest provisions a login account. DoctorID is required for
// doctors and PatientID for patients.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=255"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=admin staff doctor patient"`
	DoctorID  *int   `json:"doctor_id" validate:"omitempty,min=1"`
	PatientID *int   `json:"patient_id" validate:"omitempty,min=1"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	DoctorID  *int      `json:"doctor_id,omitempty"`
	PatientID *int      `json:"patient_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
