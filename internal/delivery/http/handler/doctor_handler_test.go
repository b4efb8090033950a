package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/usecase"

	"github.com/sirupsen/logrus"
)

type stubDoctorUsecase struct {
	usecase.DoctorUsecase
	called        string
	gotDepartment string
}

func (s *stubDoctorUsecase) GetByName(ctx context.Context, name string) (*dto.DoctorResponse, error) {
	s.called = "name"
	return &dto.DoctorResponse{ID: 5, Name: name}, nil
}

func (s *stubDoctorUsecase) List(ctx context.Context) (*dto.DoctorListResponse, error) {
	s.called = "list"
	return &dto.DoctorListResponse{}, nil
}

func (s *stubDoctorUsecase) ListByDepartment(ctx context.Context, department string) (*dto.DoctorListResponse, error) {
	s.called = "department"
	s.gotDepartment = department
	return &dto.DoctorListResponse{}, nil
}

func TestGetAllDoctors_QueryRouting(t *testing.T) {
	tests := []struct {
		query          string
		wantCall       string
		wantDepartment string
	}{
		{"", "list", ""},
		{"?name=Dr.+Rao", "name", ""},
		{"?department=+Cardiology+", "department", "Cardiology"},
		{"?department=+", "list", ""},
	}

	for _, tt := range tests {
		stub := &stubDoctorUsecase{}
		log := logrus.New()
		log.SetOutput(io.Discard)
		h := NewDoctorHandler(stub, log)

		rec := httptest.NewRecorder()
		h.GetAllDoctors(rec, httptest.NewRequest(http.MethodGet, "/api/v1/doctors"+tt.query, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("%q: expected 200, got %d", tt.query, rec.Code)
		}
		if stub.called != tt.wantCall || stub.gotDepartment != tt.wantDepartment {
			t.Fatalf("%q: expected %s(%q), got %s(%q)", tt.query, tt.wantCall, tt.wantDepartment, stub.called, stub.gotDepartment)
		}
	}
}
