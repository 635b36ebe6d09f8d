package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Machine represents a billable console tied to a room.
type Machine struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	MachineType        string          `gorm:"size:64;not null" json:"machine_type"`
	MachineName        string          `gorm:"uniqueIndex;size:128;not null" json:"machine_name"`
	PricePerHourSingle decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_hour_single"`
	PricePerHourMulti  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_hour_multi"`
	IsAvailable        bool            `json:"is_available"`
	Room               string          `gorm:"size:64" json:"room"`
	ImageLink          string          `gorm:"size:512" json:"image_link"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
