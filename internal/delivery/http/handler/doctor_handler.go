package handler

import (
	"net/http"
	"strings"

	"clinic-booking-service/internal/usecase"
	"clinic-booking-service/pkg/response"

	"github.com/sirupsen/logrus"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	log           *logrus.Logger
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, log *logrus.Logger) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		log:           log,
	}
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err, "get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// GetAllDoctors lists the roster. ?name= looks one doctor up and
// ?department= narrows the list for the booking picker.
func (h *DoctorHandler) GetAllDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if name := query.Get("name"); name != "" {
		doctor, err := h.doctorUsecase.GetByName(r.Context(), name)
		if err != nil {
			writeError(w, h.log, err, "find doctor by name")
			return
		}
		response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
		return
	}

	if department := strings.TrimSpace(query.Get("department")); department != "" {
		doctors, err := h.doctorUsecase.ListByDepartment(r.Context(), department)
		if err != nil {
			writeError(w, h.log, err, "find doctors by department")
			return
		}
		response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
		return
	}

	doctors, err := h.doctorUsecase.List(r.Context())
	if err != nil {
		writeError(w, h.log, err, "get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	me, err := h.doctorUsecase.Me(r.Context(), actor)
	if err != nil {
		writeError(w, h.log, err, "get doctor profile")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", me)
}
