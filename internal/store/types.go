package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors the API layer maps onto status codes.
var (
	ErrNotFound          = errors.New("store: record not found")
	ErrStaleVersion      = errors.New("store: stale session version")
	ErrMachineOccupied   = errors.New("store: machine already has an open session")
	ErrMachineUnknown    = errors.New("store: no such machine")
	ErrUnknownItem       = errors.New("store: item not in inventory")
	ErrInsufficientStock = errors.New("store: not enough stock")
	ErrBadMode           = errors.New("store: mode must be single or multi")
)

// StartSessionParams starts a billed occupancy on a machine. EndTime set
// means a fixed-duration (count-down) session; nil means open time.
type StartSessionParams struct {
	CustomerName string
	MachineName  string
	Mode         string
	Discount     decimal.Decimal
	EndTime      *time.Time
}

// ModeChangeParams switches a running session to another mode and/or machine.
type ModeChangeParams struct {
	NewMode        string
	NewMachineName string
}

// SnapshotUpdate is the client-editable slice of a session, guarded by the
// optimistic-concurrency version token.
type SnapshotUpdate struct {
	Version      int
	CustomerName string
	Discount     decimal.Decimal
	IsOpenTime   bool
}

// Adjustments are the cashier's manual corrections applied at payment time.
type Adjustments struct {
	CashierName          string
	Discount             decimal.Decimal
	DiscountReason       string
	AdditionalCost       decimal.Decimal
	AdditionalCostReason string
}

// ItemDecrement is one line of an inventory bulk decrease.
type ItemDecrement struct {
	ItemName string `json:"item_name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// ExpiredSession identifies a fixed-duration session whose end time has
// passed; the notification worker fans it out to subscribers of the machine.
type ExpiredSession struct {
	SessionID    uint
	MachineID    uint
	MachineName  string
	Room         string
	CustomerName string
}
