package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/delivery/http/middleware"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/usecase"
	"clinic-booking-service/pkg/response"
	"clinic-booking-service/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type stubAppointmentUsecase struct {
	usecase.AppointmentUsecase
	err       error
	gotActor  entity.Actor
	gotFilter *dto.AppointmentFilterRequest
}

func (s *stubAppointmentUsecase) Create(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	s.gotActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: 1, PatientID: req.PatientID, DoctorID: req.DoctorID, Status: "Scheduled"}, nil
}

func (s *stubAppointmentUsecase) GetByID(ctx context.Context, id int, actor *entity.Actor) (*dto.AppointmentResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentResponse{ID: id}, nil
}

func (s *stubAppointmentUsecase) Filter(ctx context.Context, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	s.gotFilter = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AppointmentListResponse{}, nil
}

func newTestHandler(stub *stubAppointmentUsecase) *AppointmentHandler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAppointmentHandler(stub, validator.NewValidator(), log)
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var body errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

const validCreateBody = `{"patient_id":1,"doctor_id":5,"appointment_date":"2026-10-19","appointment_time":"08:00"}`

func postCreate(h *AppointmentHandler, body string, actor *entity.Actor) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	h.CreateAppointment(rec, req)
	return rec
}

func TestCreateAppointment_MapsUsecaseErrors(t *testing.T) {
	staff := entity.Actor{Role: entity.RoleStaff}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"daily limit", usecase.ErrDailyLimitReached, http.StatusBadRequest, "DAILY_LIMIT_REACHED"},
		{"out of schedule", usecase.ErrOutOfSchedule, http.StatusBadRequest, "OUT_OF_SCHEDULE"},
		{"patient not found", usecase.ErrPatientNotFound, http.StatusUnprocessableEntity, "PATIENT_NOT_FOUND"},
		{"access denied", usecase.ErrAccessDenied, http.StatusForbidden, "ACCESS_DENIED"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postCreate(newTestHandler(&stubAppointmentUsecase{err: tt.err}), validCreateBody, &staff)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			body := decodeEnvelope(t, rec)
			if body.Success || body.Error.Code != tt.wantCode {
				t.Fatalf("expected code %s, got %+v", tt.wantCode, body)
			}
			if strings.Contains(body.Message, "connection reset") {
				t.Fatalf("internal error detail leaked: %q", body.Message)
			}
		})
	}
}

func TestCreateAppointment_Success(t *testing.T) {
	stub := &stubAppointmentUsecase{}
	patient := entity.Actor{ID: 1, Role: entity.RolePatient}

	rec := postCreate(newTestHandler(stub), validCreateBody, &patient)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.gotActor != patient {
		t.Fatalf("expected actor from context, got %+v", stub.gotActor)
	}

	var body response.Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected success envelope")
	}
}

func TestCreateAppointment_ValidationErrors(t *testing.T) {
	staff := entity.Actor{Role: entity.RoleStaff}
	h := newTestHandler(&stubAppointmentUsecase{})

	rec := postCreate(h, `{"patient_id":1,"doctor_id":5,"appointment_date":"19-10-2026","appointment_time":"8am"}`, &staff)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error.Code != "INVALID_PAYLOAD" {
		t.Fatalf("expected INVALID_PAYLOAD, got %s", body.Error.Code)
	}
	if _, ok := body.Error.Fields["appointment_date"]; !ok {
		t.Fatalf("expected appointment_date field error, got %+v", body.Error.Fields)
	}
	if _, ok := body.Error.Fields["appointment_time"]; !ok {
		t.Fatalf("expected appointment_time field error, got %+v", body.Error.Fields)
	}

	rec = postCreate(h, `{not json`, &staff)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestCreateAppointment_RequiresActor(t *testing.T) {
	rec := postCreate(newTestHandler(&stubAppointmentUsecase{}), validCreateBody, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without an actor, got %d", rec.Code)
	}
}

func TestGetAppointment_NotFound(t *testing.T) {
	h := newTestHandler(&stubAppointmentUsecase{err: usecase.ErrAppointmentNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/42", nil)
	req = req.WithContext(middleware.WithActor(req.Context(), entity.Actor{Role: entity.RoleStaff}))
	req = mux.SetURLVars(req, map[string]string{"id": "42"})
	rec := httptest.NewRecorder()
	h.GetAppointment(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", body.Error.Code)
	}
}

func TestSearchAppointments_ParsesQuery(t *testing.T) {
	stub := &stubAppointmentUsecase{}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/search?doctor_id=5&status=Scheduled&start_date=2026-10-19", nil)
	rec := httptest.NewRecorder()
	h.SearchAppointments(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	f := stub.gotFilter
	if f == nil || f.DoctorID == nil || *f.DoctorID != 5 || f.PatientID != nil || f.Status != "Scheduled" || f.StartDate != "2026-10-19" {
		t.Fatalf("unexpected filter %+v", f)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/appointments/search?doctor_id=five", nil)
	rec = httptest.NewRecorder()
	h.SearchAppointments(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a non-numeric doctor_id, got %d", rec.Code)
	}
}
