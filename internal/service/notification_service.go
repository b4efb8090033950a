package service

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/domain/repository"
	"clinic-booking-service/internal/infrastructure/mail"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier is told about committed changes. Calls never block on delivery
// and never fail the caller.
type Notifier interface {
	NotifyRegistration(patient *entity.Patient)
	NotifyBooked(appointment *entity.Appointment)
	NotifyStatusChanged(appointment *entity.Appointment, oldStatus entity.AppointmentStatus)
	NotifyRescheduled(appointment *entity.Appointment, oldDate time.Time, oldTime entity.ClockTime)
	NotifyCancelled(appointment *entity.Appointment)
}

type notificationKind int

const (
	notifyRegistration notificationKind = iota
	notifyBooked
	notifyStatusChanged
	notifyRescheduled
	notifyCancelled
)

func (k notificationKind) String() string {
	switch k {
	case notifyRegistration:
		return "registration"
	case notifyBooked:
		return "booked"
	case notifyStatusChanged:
		return "status_changed"
	case notifyRescheduled:
		return "rescheduled"
	case notifyCancelled:
		return "cancelled"
	}
	return "unknown"
}

// notification is a queued message. Appointment and Patient are copies
// taken at enqueue time.
type notification struct {
	Kind        notificationKind
	Appointment entity.Appointment
	Patient     *entity.Patient
	DoctorName  string
	OldStatus   entity.AppointmentStatus
	OldDate     time.Time
	OldTime     entity.ClockTime

	StatusMessage string
}

const (
	defaultNotificationWorkers = 2
	defaultNotificationQueue   = 256
	sendTimeout                = 30 * time.Second
)

// NotificationService renders and sends emails on background workers.
type NotificationService struct {
	db          *gorm.DB
	log         *logrus.Logger
	sender      mail.Sender
	patientRepo repository.PatientRepository
	doctorRepo  repository.DoctorRepository

	queue   chan notification
	workers int

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewNotificationService(
	db *gorm.DB,
	log *logrus.Logger,
	sender mail.Sender,
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	workers int,
	queueSize int,
) *NotificationService {
	if workers <= 0 {
		workers = defaultNotificationWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultNotificationQueue
	}
	return &NotificationService{
		db:          db,
		log:         log,
		sender:      sender,
		patientRepo: patientRepo,
		doctorRepo:  doctorRepo,
		queue:       make(chan notification, queueSize),
		workers:     workers,
		stopChan:    make(chan struct{}),
	}
}

// =============================================================================
// Lifecycle Methods
// =============================================================================

// Start launches the workers. Safe to call multiple times.
func (s *NotificationService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.log.Infof("NotificationService started with %d workers", s.workers)
}

// Stop lets the workers send what is already queued, then returns.
// Notifications enqueued afterwards are dropped. Safe to call multiple times.
func (s *NotificationService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("NotificationService stopped")
	}
}

// =============================================================================
// Notifier
// =============================================================================

func (s *NotificationService) NotifyRegistration(patient *entity.Patient) {
	if patient == nil {
		return
	}
	p := *patient
	s.enqueue(notification{Kind: notifyRegistration, Patient: &p})
}

func (s *NotificationService) NotifyBooked(appointment *entity.Appointment) {
	s.enqueue(notification{Kind: notifyBooked, Appointment: *appointment})
}

func (s *NotificationService) NotifyStatusChanged(appointment *entity.Appointment, oldStatus entity.AppointmentStatus) {
	s.enqueue(notification{Kind: notifyStatusChanged, Appointment: *appointment, OldStatus: oldStatus})
}

func (s *NotificationService) NotifyRescheduled(appointment *entity.Appointment, oldDate time.Time, oldTime entity.ClockTime) {
	s.enqueue(notification{Kind: notifyRescheduled, Appointment: *appointment, OldDate: oldDate, OldTime: oldTime})
}

func (s *NotificationService) NotifyCancelled(appointment *entity.Appointment) {
	s.enqueue(notification{Kind: notifyCancelled, Appointment: *appointment})
}

// enqueue never blocks; a full queue drops the notification
func (s *NotificationService) enqueue(n notification) {
	if s.stopped.Load() {
		s.log.Warnf("Notification %s for appointment %d dropped: service stopped", n.Kind, n.Appointment.ID)
		return
	}
	select {
	case s.queue <- n:
	default:
		s.log.Warnf("Notification queue full, %s for appointment %d dropped", n.Kind, n.Appointment.ID)
	}
}

// =============================================================================
// Workers
// =============================================================================

func (s *NotificationService) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case n := <-s.queue:
			s.deliver(n)
		case <-s.stopChan:
			s.drain()
			s.log.Debugf("Notification worker %d stopping", id)
			return
		}
	}
}

func (s *NotificationService) drain() {
	for {
		select {
		case n := <-s.queue:
			s.deliver(n)
		default:
			return
		}
	}
}

func (s *NotificationService) deliver(n notification) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.resolve(ctx, &n); err != nil {
		s.log.Warnf("Failed to prepare %s notification: %+v", n.Kind, err)
		return
	}
	if n.Patient.Email == "" {
		s.log.Debugf("Patient %d has no email, %s notification skipped", n.Patient.ID, n.Kind)
		return
	}

	subject, body, err := render(n)
	if err != nil {
		s.log.Warnf("Failed to render %s notification: %+v", n.Kind, err)
		return
	}

	if err := s.sender.Send(ctx, n.Patient.Email, subject, body); err != nil {
		s.log.Warnf("Failed to send %s notification to patient %d: %+v", n.Kind, n.Patient.ID, err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"kind":           n.Kind.String(),
		"patient_id":     n.Patient.ID,
		"appointment_id": n.Appointment.ID,
	}).Info("Notification sent")
}

// resolve loads the patient and doctor a notification is about
func (s *NotificationService) resolve(ctx context.Context, n *notification) error {
	if n.Patient == nil {
		patient, err := s.patientRepo.FindByID(ctx, s.db, n.Appointment.PatientID)
		if err != nil {
			return fmt.Errorf("find patient %d: %w", n.Appointment.PatientID, err)
		}
		if patient == nil {
			return fmt.Errorf("patient %d not found", n.Appointment.PatientID)
		}
		n.Patient = patient
	}

	if n.Kind == notifyRegistration {
		return nil
	}

	n.DoctorName = "N/A"
	doctor, err := s.doctorRepo.FindByID(ctx, s.db, n.Appointment.DoctorID)
	if err != nil {
		return fmt.Errorf("find doctor %d: %w", n.Appointment.DoctorID, err)
	}
	if doctor != nil {
		n.DoctorName = doctor.Name
	}
	n.StatusMessage = statusMessage(n.Appointment.Status)
	return nil
}

func render(n notification) (string, string, error) {
	tmpl, ok := mailTemplates[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for %s", n.Kind)
	}
	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, n); err != nil {
		return "", "", err
	}
	return tmpl.subject, buf.String(), nil
}
