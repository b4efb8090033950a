package entity

import "time"

// Gender of a patient
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Patient represents a registered patient
type Patient struct {
	ID          int        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Email       string     `gorm:"type:varchar(255);index" json:"email"`
	Phone       string     `gorm:"type:varchar(20)" json:"phone"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender      Gender     `gorm:"type:varchar(10)" json:"gender"`
	Address     string     `gorm:"type:text" json:"address"`
	BloodGroup  string     `gorm:"type:varchar(5)" json:"blood_group"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Patient) TableName() string {
	return "patients"
}
