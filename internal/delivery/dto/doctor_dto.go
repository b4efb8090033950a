package dto

import "github.com/shopspring/decimal"

// Response DTOs

type DoctorResponse struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Department      string          `json:"department"`
	Specialty       string          `json:"specialty,omitempty"`
	Email           string          `json:"email,omitempty"`
	Phone           string          `json:"phone,omitempty"`
	Experience      int             `json:"experience"`
	Qualification   string          `json:"qualification,omitempty"`
	Availability    string          `json:"availability,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	DailyCapacity   int             `json:"daily_capacity"`
}

// DoctorMeResponse is the dashboard header of the logged-in doctor
type DoctorMeResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
