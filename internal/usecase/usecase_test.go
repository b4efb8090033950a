package usecase

import (
	"io"
	"sync"
	"testing"
	"time"

	"clinic-booking-service/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var clinicZone = time.FixedZone("WIB", 7*60*60)

// fixedNow is Thursday 2026-10-15 10:00 clinic time
var fixedNow = time.Date(2026, 10, 15, 10, 0, 0, 0, clinicZone)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&entity.Doctor{}, &entity.Patient{}, &entity.User{}, &entity.Appointment{}, &entity.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	doctors := []entity.Doctor{
		{ID: 5, Name: "Dr. Rao", Department: "Cardiology", ConsultationFee: decimal.NewFromInt(150000)},
		{ID: 6, Name: "Dr. Lim", Department: "General", ConsultationFee: decimal.NewFromInt(75000)},
		{ID: 7, Name: "Dr. Sato", Department: "Dermatology", ConsultationFee: decimal.NewFromInt(120000)},
	}
	if err := db.Create(&doctors).Error; err != nil {
		t.Fatalf("seed doctors: %v", err)
	}
	patients := []entity.Patient{
		{ID: 1, Name: "Asha", Email: "asha@example.com"},
		{ID: 2, Name: "Ben", Email: "ben@example.com"},
		{ID: 3, Name: "Chen", Email: "chen@example.com"},
		{ID: 4, Name: "Dina", Email: "dina@example.com"},
		{ID: 5, Name: "Eli", Email: "eli@example.com"},
		{ID: 6, Name: "Faye", Email: "faye@example.com"},
	}
	if err := db.Create(&patients).Error; err != nil {
		t.Fatalf("seed patients: %v", err)
	}
	return db
}

// nextWeekday returns the first date strictly after from falling on day
func nextWeekday(from time.Time, day time.Weekday) time.Time {
	d := entity.DateOnly(from).AddDate(0, 0, 1)
	for d.Weekday() != day {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

type notifyCall struct {
	kind          string
	appointmentID int
	oldStatus     entity.AppointmentStatus
	oldDate       time.Time
	oldTime       entity.ClockTime
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *fakeNotifier) record(c notifyCall) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, c)
}

func (n *fakeNotifier) NotifyRegistration(patient *entity.Patient) {
	n.record(notifyCall{kind: "registration", appointmentID: patient.ID})
}

func (n *fakeNotifier) NotifyBooked(a *entity.Appointment) {
	n.record(notifyCall{kind: "booked", appointmentID: a.ID})
}

func (n *fakeNotifier) NotifyStatusChanged(a *entity.Appointment, oldStatus entity.AppointmentStatus) {
	n.record(notifyCall{kind: "status", appointmentID: a.ID, oldStatus: oldStatus})
}

func (n *fakeNotifier) NotifyRescheduled(a *entity.Appointment, oldDate time.Time, oldTime entity.ClockTime) {
	n.record(notifyCall{kind: "rescheduled", appointmentID: a.ID, oldDate: oldDate, oldTime: oldTime})
}

func (n *fakeNotifier) NotifyCancelled(a *entity.Appointment) {
	n.record(notifyCall{kind: "cancelled", appointmentID: a.ID})
}

func (n *fakeNotifier) Calls() []notifyCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifyCall(nil), n.calls...)
}
