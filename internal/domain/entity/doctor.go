package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Doctor is a member of the clinic roster
type Doctor struct {
	ID              int             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Department      string          `gorm:"type:varchar(100);not null;index" json:"department"`
	Specialty       string          `gorm:"type:varchar(100)" json:"specialty"`
	Email           string          `gorm:"type:varchar(255)" json:"email"`
	Phone           string          `gorm:"type:varchar(20)" json:"phone"`
	Experience      int             `gorm:"not null;default:0" json:"experience"`
	Qualification   string          `gorm:"type:varchar(255)" json:"qualification"`
	Availability    string          `gorm:"type:varchar(255)" json:"availability"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}
