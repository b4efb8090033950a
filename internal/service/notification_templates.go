package service

import (
	"strings"
	"text/template"
	"time"

	"clinic-booking-service/internal/domain/entity"
)

const (
	mailDateLayout = "January 02, 2006"
	mailTimeLayout = "3:04 PM"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "N/A"
		}
		return t.Format(mailDateLayout)
	},
	"clock": func(c entity.ClockTime) string {
		return c.On(time.Time{}, time.UTC).Format(mailTimeLayout)
	},
	"orNA": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "N/A"
		}
		return s
	},
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var mailTemplates = map[notificationKind]mailTemplate{
	notifyRegistration: {
		subject: "Welcome to Healthcare System - Registration Successful",
		body: template.Must(template.New("registration").Funcs(templateFuncs).Parse(`Dear {{.Patient.Name}},

Thank you for registering with our Healthcare System!

Your registration details:
Patient ID: {{.Patient.ID}}
Name: {{.Patient.Name}}
Email: {{.Patient.Email}}
Phone: {{orNA .Patient.Phone}}
Date of Birth: {{if .Patient.DateOfBirth}}{{date .Patient.DateOfBirth}}{{else}}N/A{{end}}
Gender: {{orNA (printf "%s" .Patient.Gender)}}
Blood Group: {{orNA .Patient.BloodGroup}}

You can now book appointments using your Patient ID.

Best regards,
Healthcare System Team
`)),
	},
	notifyBooked: {
		subject: "Appointment Confirmation - Healthcare System",
		body: template.Must(template.New("booked").Funcs(templateFuncs).Parse(`Dear {{.Patient.Name}},

Your appointment has been successfully booked!

Appointment Details:
Appointment ID: {{.Appointment.ID}}
Doctor: {{.DoctorName}}
Department: {{.Appointment.Department}}
Date: {{date .Appointment.AppointmentDate}}
Time: {{clock .Appointment.AppointmentTime}}
Reason: {{if .Appointment.Reason}}{{.Appointment.Reason}}{{else}}General Consultation{{end}}
Status: {{.Appointment.Status}}

Please arrive 10 minutes before your scheduled time.

If you need to reschedule or cancel, please contact us or use the patient portal.

Best regards,
Healthcare System Team
`)),
	},
	notifyStatusChanged: {
		subject: "Appointment Status Update - Healthcare System",
		body: template.Must(template.New("status").Funcs(templateFuncs).Parse(`Dear {{.Patient.Name}},

{{.StatusMessage}}

Appointment Details:
Appointment ID: {{.Appointment.ID}}
Doctor: {{.DoctorName}}
Department: {{.Appointment.Department}}
Date: {{date .Appointment.AppointmentDate}}
Time: {{clock .Appointment.AppointmentTime}}
Previous Status: {{.OldStatus}}
Current Status: {{.Appointment.Status}}

If you have any questions, please contact us.

Best regards,
Healthcare System Team
`)),
	},
	notifyRescheduled: {
		subject: "Appointment Rescheduled - Healthcare System",
		body: template.Must(template.New("rescheduled").Funcs(templateFuncs).Parse(`Dear {{.Patient.Name}},

Your appointment has been rescheduled.

Appointment Details:
Appointment ID: {{.Appointment.ID}}
Doctor: {{.DoctorName}}
Department: {{.Appointment.Department}}

Previous Schedule:
Date: {{date .OldDate}}
Time: {{clock .OldTime}}

New Schedule:
Date: {{date .Appointment.AppointmentDate}}
Time: {{clock .Appointment.AppointmentTime}}

Please make a note of the new date and time.

If you have any questions or concerns, please contact us.

Best regards,
Healthcare System Team
`)),
	},
	notifyCancelled: {
		subject: "Appointment Cancelled - Healthcare System",
		body: template.Must(template.New("cancelled").Funcs(templateFuncs).Parse(`Dear {{.Patient.Name}},

Your appointment has been cancelled.

Cancelled Appointment Details:
Appointment ID: {{.Appointment.ID}}
Doctor: {{.DoctorName}}
Department: {{.Appointment.Department}}
Date: {{date .Appointment.AppointmentDate}}
Time: {{clock .Appointment.AppointmentTime}}
Reason: {{orNA .Appointment.Reason}}

If you would like to book a new appointment, please visit our website or contact us.

Best regards,
Healthcare System Team
`)),
	},
}

// statusMessage is the lead sentence of a status change email
func statusMessage(status entity.AppointmentStatus) string {
	switch status {
	case entity.AppointmentStatusCompleted:
		return "Your appointment has been marked as Completed."
	case entity.AppointmentStatusCancelled:
		return "Your appointment has been Cancelled."
	case entity.AppointmentStatusInProgress:
		return "Your appointment is now In Progress."
	case entity.AppointmentStatusPending:
		return "Your appointment status has been updated to Pending."
	default:
		return "Your appointment status has been updated."
	}
}
