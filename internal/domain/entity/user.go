package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the centralized authentication table.
// DoctorID / PatientID link the account to the record it acts as.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	Role      Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	DoctorID  *int      `gorm:"index" json:"doctor_id,omitempty"`
	PatientID *int      `gorm:"index" json:"patient_id,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Actor resolves the identity the scheduling core sees for this account
func (u *User) Actor() Actor {
	actor := Actor{Role: u.Role, AccountID: u.ID}
	switch u.Role {
	case RoleDoctor:
		if u.DoctorID != nil {
			actor.ID = *u.DoctorID
		}
	case RolePatient:
		if u.PatientID != nil {
			actor.ID = *u.PatientID
		}
	}
	return actor
}
