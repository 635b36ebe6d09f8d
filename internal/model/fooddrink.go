package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FoodDrinkItem is an inventory entry. The field roles are historical and
// must not be "fixed": Price is the per-unit cost basis and TotalPrice is the
// per-unit sale price. Every profit computation in the report package relies
// on exactly these semantics.
type FoodDrinkItem struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ItemName   string          `gorm:"uniqueIndex;size:128;not null" json:"item_name"`
	ItemType   string          `gorm:"size:64" json:"item_type"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
