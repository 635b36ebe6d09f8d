package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing modes. ModeEnded is only ever written into the terminal log entry.
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
	ModeEnded  = "session ended"
)

// Session is an open customer occupancy of a room/machine accruing billable
// time. end_time == nil means open-ended (count-up); a value set at creation
// means fixed-duration (count-down). Machine pricing is snapshotted onto the
// session so a later machine edit cannot change a running bill.
type Session struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerName  string          `gorm:"size:128;not null" json:"customer_name"`
	StartTime     time.Time       `gorm:"not null" json:"start_time"`
	EndTime       *time.Time      `json:"end_time"`
	LastTimeCheck time.Time       `gorm:"not null" json:"last_time_check"`
	TotalCost     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total_cost"`
	PricePerHour  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_hour"`

	MachineID          uint            `gorm:"index" json:"machine_id"`
	MachineName        string          `gorm:"size:128;not null" json:"machine_name"`
	Room               string          `gorm:"size:64" json:"room"`
	PricePerHourSingle decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_per_hour_single"`
	PricePerHourMulti  decimal.Decimal `gorm:"type:numeric(12,2)" json:"price_per_hour_multi"`
	Mode               string          `gorm:"size:32;not null" json:"multi_single"`
	Discount           decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount"`

	IsOpenTime bool `json:"is_open_time"`
	// Ended gates quote generation: a session cannot be checked out before
	// it has been closed.
	Ended          bool `gorm:"not null;default:false" json:"ended"`
	ExpiryNotified bool `gorm:"not null;default:false" json:"-"`
	// Version is the optimistic-concurrency token carried by full-snapshot
	// updates; a stale write is rejected with 409.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DrinksFoods []FoodLine   `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"drinks_foods"`
	Logs        []SessionLog `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"logs"`
}

// FoodLine is a snapshot of a food/drink sale at the time of addition. It is
// deliberately independent of the live inventory price.
type FoodLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SessionID uint            `gorm:"index;not null" json:"session_id"`
	ItemName  string          `gorm:"size:128;not null" json:"item_name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}

// SessionLog is an append-only audit entry recording one pricing/machine/room
// configuration interval and the cost accrued under it up to the switch.
type SessionLog struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	SessionID        uint            `gorm:"index;not null" json:"session_id"`
	OldMode          string          `gorm:"size:32" json:"old_mode"`
	NewMode          string          `gorm:"size:32" json:"new_mode"`
	OldPricePerHour  decimal.Decimal `gorm:"type:numeric(12,2)" json:"old_price_per_hour"`
	NewPricePerHour  decimal.Decimal `gorm:"type:numeric(12,2)" json:"new_price_per_hour"`
	OldMachine       string          `gorm:"size:128" json:"old_machine"`
	NewMachine       string          `gorm:"size:128" json:"new_machine"`
	OldRoom          string          `gorm:"size:64" json:"old_room"`
	NewRoom          string          `gorm:"size:64" json:"new_room"`
	OldStartTime     time.Time       `json:"old_start_time"`
	TimeSpentHours   int             `json:"time_spent_hours"`
	TimeSpentMinutes int             `json:"time_spent_minutes"`
	TimeCost         decimal.Decimal `gorm:"type:numeric(14,4)" json:"time_cost"`
	Timestamp        time.Time       `gorm:"not null" json:"timestamp"`
}
