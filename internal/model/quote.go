package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the finalized, immutable billing record created exactly once when
// a session is paid. Timestamps inside the copied logs are stored as already
// formatted en-GB strings, matching what the receipt printer and the report
// screens consume.
type Quote struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserName         string          `gorm:"size:128" json:"user_name"`
	MachineName      string          `gorm:"size:128" json:"machine_name"`
	Room             string          `gorm:"size:64" json:"room"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	TotalCost        decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total_cost"`
	FoodsDrinksCost  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"foods_drinks_cost"`
	MachineUsageCost decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"machine_usage_cost"`
	// Date is serialized as DD/MM/YYYY HH:MM:SS; the report folds parse
	// exactly this layout.
	Date string `gorm:"size:32;not null" json:"date"`

	BaseTotal            decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"baseTotal"`
	ManualDiscount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"manualDiscount"`
	DiscountReason       string          `gorm:"size:256" json:"discountReason"`
	AdditionalCost       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"additionalCost"`
	AdditionalCostReason string          `gorm:"size:256" json:"additionalCostReason"`
	FinalTotal           decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"finalTotal"`

	CreatedAt time.Time `json:"created_at"`

	Logs       []QuoteLog  `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"logs"`
	FoodDrinks []QuoteLine `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"food_drinks"`
}

// QuoteLog is a session log copied onto a finalized quote, numbered and with
// human-formatted timestamps.
type QuoteLog struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	QuoteID          uint            `gorm:"index;not null" json:"quote_id"`
	LogNumber        int             `gorm:"not null" json:"log_number"`
	OldMode          string          `gorm:"size:32" json:"old_mode"`
	NewMode          string          `gorm:"size:32" json:"new_mode"`
	OldPricePerHour  decimal.Decimal `gorm:"type:numeric(12,2)" json:"old_price_per_hour"`
	NewPricePerHour  decimal.Decimal `gorm:"type:numeric(12,2)" json:"new_price_per_hour"`
	OldMachine       string          `gorm:"size:128" json:"old_machine"`
	NewMachine       string          `gorm:"size:128" json:"new_machine"`
	OldRoom          string          `gorm:"size:64" json:"old_room"`
	NewRoom          string          `gorm:"size:64" json:"new_room"`
	OldStartTime     string          `gorm:"size:32" json:"old_start_time"`
	TimeSpentHours   int             `json:"time_spent_hours"`
	TimeSpentMinutes int             `json:"time_spent_minutes"`
	TimeCost         decimal.Decimal `gorm:"type:numeric(14,4)" json:"time_cost"`
	Timestamp        string          `gorm:"size:32" json:"timestamp"`
}

// QuoteLine is a food/drink line copied onto a finalized quote.
type QuoteLine struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	QuoteID    uint            `gorm:"index;not null" json:"quote_id"`
	ItemNumber int             `gorm:"not null" json:"item_number"`
	ItemName   string          `gorm:"size:128;not null" json:"item_name"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
}
