package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gamecafe-backend/internal/billing"
	"gamecafe-backend/internal/db"
	"gamecafe-backend/internal/model"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func newTestStore(t *testing.T) (*gorm.DB, Store) {
	t.Helper()
	// One shared in-memory database per test, torn down with the last conn.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB, NewGormStore(gormDB)
}

func seedMachines(t *testing.T, gormDB *gorm.DB) {
	t.Helper()
	machines := []model.Machine{
		{MachineType: "PS5", MachineName: "PS5-01", PricePerHourSingle: dec("20"), PricePerHourMulti: dec("30"), IsAvailable: true, Room: "VIP 1"},
		{MachineType: "PS4", MachineName: "PS4-01", PricePerHourSingle: dec("10"), PricePerHourMulti: dec("15"), IsAvailable: true, Room: "Hall"},
	}
	require.NoError(t, gormDB.Create(&machines).Error)
}

func seedInventory(t *testing.T, gormDB *gorm.DB) {
	t.Helper()
	items := []model.FoodDrinkItem{
		{ItemName: "cola", ItemType: "drink", Price: dec("3"), TotalPrice: dec("5"), Quantity: 50},
		{ItemName: "chips", ItemType: "food", Price: dec("4"), TotalPrice: dec("6"), Quantity: 20},
	}
	require.NoError(t, gormDB.Create(&items).Error)
}

func TestStartSession(t *testing.T) {
	gormDB, s := newTestStore(t)
	seedMachines(t, gormDB)
	ctx := context.Background()

	sess, err := s.StartSession(ctx, StartSessionParams{
		CustomerName: "Sam",
		MachineName:  "PS5-01",
		Mode:         model.ModeSingle,
	}, t0)
	require.NoError(t, err)
	assertMoney(t, "20", sess.PricePerHour)
	assert.Equal(t, "VIP 1", sess.Room)
	assert.Equal(t, 1, sess.Version)
	assert.True(t, sess.IsOpenTime)

	t.Run("machine occupied", func(t *testing.T) {
		_, err := s.StartSession(ctx, StartSessionParams{
			CustomerName: "Lee",
			MachineName:  "PS5-01",
			Mode:         model.ModeSingle,
		}, t0)
		assert.ErrorIs(t, err, ErrMachineOccupied)
	})

	t.Run("unknown machine", func(t *testing.T) {
		_, err := s.StartSession(ctx, StartSessionParams{
			CustomerName: "Lee",
			MachineName:  "XBOX-09",
			Mode:         model.ModeSingle,
		}, t0)
		assert.ErrorIs(t, err, ErrMachineUnknown)
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := s.StartSession(ctx, StartSessionParams{
			CustomerName: "Lee",
			MachineName:  "PS4-01",
			Mode:         "triple",
		}, t0)
		assert.ErrorIs(t, err, ErrBadMode)
	})
}

// TestSessionLifecycle drives a full rental through the store, checking the
// accrued amounts at each step and the final quote figures.
func TestSessionLifecycle(t *testing.T) {
	gormDB, s := newTestStore(t)
	seedMachines(t, gormDB)
	seedInventory(t, gormDB)
	ctx := context.Background()

	sess, err := s.StartSession(ctx, StartSessionParams{
		CustomerName: "Sam",
		MachineName:  "PS5-01",
		Mode:         model.ModeSingle,
	}, t0)
	require.NoError(t, err)
	id := sess.ID

	// One hour at 20/h.
	sess, err = s.Accrue(ctx, id, t0.Add(time.Hour))
	require.NoError(t, err)
	assertMoney(t, "20", sess.TotalCost)

	// Accruing again at the same instant must not charge twice.
	sess, err = s.Accrue(ctx, id, t0.Add(time.Hour))
	require.NoError(t, err)
	assertMoney(t, "20", sess.TotalCost)

	// Two colas at the sale price.
	sess, err = s.AddItem(ctx, id, "cola", 2)
	require.NoError(t, err)
	assertMoney(t, "30", sess.TotalCost)
	require.Len(t, sess.DrinksFoods, 1)
	assertMoney(t, "5", sess.DrinksFoods[0].Price)

	// Switch to multi on the same machine at T0+1h30: the half hour since
	// the last check is billed at the old 20/h.
	sess, err = s.ChangeMode(ctx, id, ModeChangeParams{
		NewMode:        model.ModeMulti,
		NewMachineName: "PS5-01",
	}, t0.Add(90*time.Minute))
	require.NoError(t, err)
	assertMoney(t, "40", sess.TotalCost)
	require.Len(t, sess.Logs, 1)
	assertMoney(t, "10", sess.Logs[0].TimeCost)
	assert.Equal(t, model.ModeSingle, sess.Logs[0].OldMode)
	assert.Equal(t, model.ModeMulti, sess.Logs[0].NewMode)
	assertMoney(t, "30", sess.PricePerHour)

	// One more hour at 30/h, then end.
	sess, err = s.EndSession(ctx, id, t0.Add(150*time.Minute))
	require.NoError(t, err)
	assertMoney(t, "70", sess.TotalCost)
	assert.True(t, sess.Ended)
	require.Len(t, sess.Logs, 2)
	assert.Equal(t, model.ModeEnded, sess.Logs[1].NewMode)

	// Mutations after the end are refused.
	_, err = s.AddItem(ctx, id, "cola", 1)
	assert.ErrorIs(t, err, billing.ErrSessionEnded)

	quote, err := s.Checkout(ctx, id, Adjustments{
		CashierName: "cashier",
		Discount:    dec("5"),
	}, t0.Add(150*time.Minute))
	require.NoError(t, err)
	assertMoney(t, "10", quote.FoodsDrinksCost)
	assertMoney(t, "60", quote.MachineUsageCost)
	assertMoney(t, "70", quote.BaseTotal)
	assertMoney(t, "65", quote.FinalTotal)
	assert.Equal(t, "cashier", quote.UserName)
	require.Len(t, quote.Logs, 2)
	assert.Equal(t, 1, quote.Logs[0].LogNumber)

	// The session and its children are gone, the quote is persisted and the
	// sold stock is decremented, all from the same transaction.
	_, err = s.GetSession(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	var lineCount, logCount int64
	gormDB.Model(&model.FoodLine{}).Where("session_id = ?", id).Count(&lineCount)
	gormDB.Model(&model.SessionLog{}).Where("session_id = ?", id).Count(&logCount)
	assert.Zero(t, lineCount)
	assert.Zero(t, logCount)

	var stored model.Quote
	require.NoError(t, gormDB.Preload("FoodDrinks").First(&stored, quote.ID).Error)
	assertMoney(t, "65", stored.FinalTotal)

	var cola model.FoodDrinkItem
	require.NoError(t, gormDB.Where("item_name = ?", "cola").First(&cola).Error)
	assert.Equal(t, 48, cola.Quantity)
}

func TestRemoveItem(t *testing.T) {
	gormDB, s := newTestStore(t)
	seedMachines(t, gormDB)
	seedInventory(t, gormDB)
	ctx := context.Background()

	sess, err := s.StartSession(ctx, StartSessionParams{
		CustomerName: "Sam", MachineName: "PS5-01", Mode: model.ModeSingle,
	}, t0)
	require.NoError(t, err)

	sess, err = s.AddItem(ctx, sess.ID, "cola", 2)
	require.NoError(t, err)
	assertMoney(t, "10", sess.TotalCost)

	sess, err = s.RemoveItem(ctx, sess.ID, 0)
	require.NoError(t, err)
	assertMoney(t, "0", sess.TotalCost)
	assert.Empty(t, sess.DrinksFoods)

	var lineCount int64
	gormDB.Model(&model.FoodLine{}).Where("session_id = ?", sess.ID).Count(&lineCount)
	assert.Zero(t, lineCount)

	_, err = s.RemoveItem(ctx, sess.ID, 5)
	assert.ErrorIs(t, err, billing.ErrLineOutOfRange)

	_, err = s.AddItem(ctx, sess.ID, "sushi", 1)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestUpdateSnapshotVersioning(t *testing.T) {
	gormDB, s := newTestStore(t)
	seedMachines(t, gormDB)
	ctx := context.Background()

	sess, err := s.StartSession(ctx, StartSessionParams{
		CustomerName: "Sam", MachineName: "PS5-01", Mode: model.ModeSingle,
	}, t0)
	require.NoError(t, err)

	updated, err := s.UpdateSnapshot(ctx, sess.ID, SnapshotUpdate{
		Version:      sess.Version,
		CustomerName: "Samantha",
		Discount:     dec("10"),
		IsOpenTime:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Samantha", updated.CustomerName)
	assert.Equal(t, sess.Version+1, updated.Version)
	assertMoney(t, "18", updated.PricePerHour)

	// A write carrying the version the first client saw is stale now.
	_, err = s.UpdateSnapshot(ctx, sess.ID, SnapshotUpdate{
		Version:      sess.Version,
		CustomerName: "Samuel",
	})
	assert.ErrorIs(t, err, ErrStaleVersion)
}

func TestBulkDecrease(t *testing.T) {
	gormDB, s := newTestStore(t)
	seedInventory(t, gormDB)
	ctx := context.Background()

	err := s.BulkDecrease(ctx, []ItemDecrement{
		{ItemName: "cola", Quantity: 10},
		{ItemName: "chips", Quantity: 5},
	})
	require.NoError(t, err)

	var cola, chips model.FoodDrinkItem
	require.NoError(t, gormDB.Where("item_name = ?", "cola").First(&cola).Error)
	require.NoError(t, gormDB.Where("item_name = ?", "chips").First(&chips).Error)
	assert.Equal(t, 40, cola.Quantity)
	assert.Equal(t, 15, chips.Quantity)

	t.Run("insufficient stock rolls back the batch", func(t *testing.T) {
		err := s.BulkDecrease(ctx, []ItemDecrement{
			{ItemName: "cola", Quantity: 1},
			{ItemName: "chips", Quantity: 100},
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)

		require.NoError(t, gormDB.Where("item_name = ?", "cola").First(&cola).Error)
		assert.Equal(t, 40, cola.Quantity, "the first decrement must not survive the rollback")
	})

	t.Run("unknown item", func(t *testing.T) {
		err := s.BulkDecrease(ctx, []ItemDecrement{{ItemName: "sushi", Quantity: 1}})
		assert.ErrorIs(t, err, ErrUnknownItem)
	})
}

func TestAccrueOpenSessions(t *testing.T) {
	gormDB, s := newTestStore(t)
	seedMachines(t, gormDB)
	ctx := context.Background()

	end := t0.Add(time.Hour)
	fixed, err := s.StartSession(ctx, StartSessionParams{
		CustomerName: "Sam", MachineName: "PS5-01", Mode: model.ModeSingle, EndTime: &end,
	}, t0)
	require.NoError(t, err)

	open, err := s.StartSession(ctx, StartSessionParams{
		CustomerName: "Lee", MachineName: "PS4-01", Mode: model.ModeSingle,
	}, t0)
	require.NoError(t, err)

	// Before the end time: both accrue, nothing expires.
	expired, err := s.AccrueOpenSessions(ctx, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, expired)

	sess, err := s.GetSession(ctx, fixed.ID)
	require.NoError(t, err)
	assertMoney(t, "10", sess.TotalCost)

	// Past the end time: the fixed-duration session is reported exactly once.
	expired, err = s.AccrueOpenSessions(ctx, t0.Add(61*time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, fixed.ID, expired[0].SessionID)
	assert.Equal(t, "PS5-01", expired[0].MachineName)

	expired, err = s.AccrueOpenSessions(ctx, t0.Add(62*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, expired, "expiry must only be reported once")

	// Open-ended sessions keep accruing and never expire.
	sess, err = s.GetSession(ctx, open.ID)
	require.NoError(t, err)
	assertMoney(t, "10.33", sess.TotalCost.Round(2))
}
