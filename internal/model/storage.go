package model

import "time"

// StorageItem tracks back-room stock that is not sold directly (spare
// controllers, cleaning supplies and the like).
type StorageItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemName  string    `gorm:"size:128;not null" json:"item_name"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"size:32" json:"unit"`
	Note      string    `gorm:"size:512" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
