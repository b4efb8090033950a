package converter

import (
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	response := &dto.PatientResponse{
		ID:         patient.ID,
		Name:       patient.Name,
		Email:      patient.Email,
		Phone:      patient.Phone,
		Gender:     string(patient.Gender),
		Address:    patient.Address,
		BloodGroup: patient.BloodGroup,
		CreatedAt:  patient.CreatedAt,
	}
	if patient.DateOfBirth != nil {
		response.DateOfBirth = patient.DateOfBirth.Format(entity.DateLayout)
	}

	return response
}
