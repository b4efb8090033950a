package converter

import (
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/domain/policy"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:              doctor.ID,
		Name:            doctor.Name,
		Department:      doctor.Department,
		Specialty:       doctor.Specialty,
		Email:           doctor.Email,
		Phone:           doctor.Phone,
		Experience:      doctor.Experience,
		Qualification:   doctor.Qualification,
		Availability:    doctor.Availability,
		ConsultationFee: doctor.ConsultationFee,
		DailyCapacity:   policy.DailyCapacity(doctor.Department),
	}
}

// DoctorsToListResponse converts a slice of Doctor entities to DoctorListResponse DTO
func DoctorsToListResponse(doctors []entity.Doctor) *dto.DoctorListResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return &dto.DoctorListResponse{
		Doctors: responses,
		Total:   len(responses),
	}
}

// DoctorToMeResponse converts a Doctor entity to DoctorMeResponse DTO
func DoctorToMeResponse(doctor *entity.Doctor) *dto.DoctorMeResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorMeResponse{
		ID:         doctor.ID,
		Name:       doctor.Name,
		Department: doctor.Department,
	}
}
