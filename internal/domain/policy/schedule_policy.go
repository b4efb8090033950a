// Package policy holds the clinic scheduling rules: the working-hours window
// per weekday and the per-doctor daily capacity.
package policy

import (
	"strings"
	"time"

	"clinic-booking-service/internal/domain/entity"
)

const (
	// DefaultDailyCapacity applies to every department without an override.
	DefaultDailyCapacity = 2
	// GeneralDailyCapacity applies to the "General" department.
	GeneralDailyCapacity = 5

	GeneralDepartment = "General"
)

var closingTime = entity.ClockTime{Hour: 17, Minute: 0}

// OpeningTime returns the first bookable time of day for the weekday.
func OpeningTime(day time.Weekday) entity.ClockTime {
	switch day {
	case time.Thursday, time.Friday:
		return entity.ClockTime{Hour: 9}
	case time.Saturday, time.Sunday:
		return entity.ClockTime{Hour: 10}
	default:
		return entity.ClockTime{Hour: 8}
	}
}

// ClosingTime returns the last bookable time of day for the weekday.
func ClosingTime(time.Weekday) entity.ClockTime {
	return closingTime
}

// IsWithinWorkingHours reports whether t lies in the weekday's window, bounds included.
func IsWithinWorkingHours(day time.Weekday, t entity.ClockTime) bool {
	return !t.Before(OpeningTime(day)) && !t.After(ClosingTime(day))
}

// DailyCapacity is the maximum number of non-cancelled appointments a doctor of
// the department may hold on one date.
func DailyCapacity(department string) int {
	if strings.EqualFold(strings.TrimSpace(department), GeneralDepartment) {
		return GeneralDailyCapacity
	}
	return DefaultDailyCapacity
}

// Policy binds the rules used by booking and rescheduling.
type Policy struct {
	// LegacyCreateLimit applies DefaultDailyCapacity on booking regardless of
	// department. Rescheduling is always department aware.
	LegacyCreateLimit bool
}

func (p Policy) CreateCapacity(department string) int {
	if p.LegacyCreateLimit {
		return DefaultDailyCapacity
	}
	return DailyCapacity(department)
}

func (p Policy) RescheduleCapacity(department string) int {
	return DailyCapacity(department)
}

// IsBookable checks the working-hours window for a calendar date and time of day.
func (p Policy) IsBookable(date time.Time, t entity.ClockTime) bool {
	return IsWithinWorkingHours(date.Weekday(), t)
}
