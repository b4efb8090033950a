package converter

import (
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		Department:      appointment.Department,
		AppointmentDate: appointment.AppointmentDate.Format(entity.DateLayout),
		AppointmentTime: appointment.AppointmentTime.String(),
		Status:          string(appointment.Status),
		Reason:          appointment.Reason,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

// AppointmentsToListResponse converts a slice of Appointment entities to AppointmentListResponse DTO
func AppointmentsToListResponse(appointments []entity.Appointment) *dto.AppointmentListResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}
}

// AppointmentAuditValue is the snapshot stored in audit metadata
func AppointmentAuditValue(appointment *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"patient_id":       appointment.PatientID,
		"doctor_id":        appointment.DoctorID,
		"department":       appointment.Department,
		"appointment_date": appointment.AppointmentDate.Format(entity.DateLayout),
		"appointment_time": appointment.AppointmentTime.String(),
		"status":           string(appointment.Status),
	}
}
