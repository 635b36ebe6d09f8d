package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment recurrence types.
const (
	PaymentOnce    = "once"
	PaymentDaily   = "daily"
	PaymentMonthly = "monthly"
	PaymentYearly  = "yearly"
)

// Payment is an expense record with its own lifecycle, independent of any
// session. Date uses the DD/MM/YYYY textual layout.
type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:128;not null" json:"name"`
	Type      string          `gorm:"size:16;not null" json:"type"`
	Details   string          `gorm:"size:512" json:"details"`
	Date      string          `gorm:"size:32;not null" json:"date"`
	Cost      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
