package entity

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the role an authenticated account acts under
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// ParseRole matches a role name case-insensitively
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStaff:
		return RoleStaff, true
	case RoleDoctor:
		return RoleDoctor, true
	case RolePatient:
		return RolePatient, true
	}
	return "", false
}

// Actor is an already-authenticated caller.
// ID is the patient id for patients, the doctor id for doctors and zero otherwise.
type Actor struct {
	ID        int
	Role      Role
	AccountID uuid.UUID
}

// AuditUserID returns the account id for audit rows, nil when unknown
func (a Actor) AuditUserID() *uuid.UUID {
	if a.AccountID == uuid.Nil {
		return nil
	}
	id := a.AccountID
	return &id
}
