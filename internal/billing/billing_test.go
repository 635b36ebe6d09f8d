package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamecafe-backend/internal/model"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func assertMoney(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(got), "expected %s, got %s", expected, got)
}

func newSession(rate string) *model.Session {
	price := dec(rate)
	return &model.Session{
		ID:                 1,
		CustomerName:       "walk-in",
		StartTime:          t0,
		LastTimeCheck:      t0,
		TotalCost:          decimal.Zero,
		PricePerHour:       price,
		MachineID:          7,
		MachineName:        "PS5-1",
		Room:               "room 1",
		PricePerHourSingle: price,
		PricePerHourMulti:  price.Mul(decimal.NewFromInt(2)),
		Mode:               model.ModeSingle,
		Discount:           decimal.Zero,
		IsOpenTime:         true,
	}
}

func TestAccrue(t *testing.T) {
	t.Run("one hour at 20 charges 20", func(t *testing.T) {
		s := newSession("20")
		cost, err := Accrue(s, t0.Add(time.Hour))
		require.NoError(t, err)
		assertMoney(t, "20", cost)
		assertMoney(t, "20", s.TotalCost)
		assert.Equal(t, t0.Add(time.Hour), s.LastTimeCheck)
	})

	t.Run("same instant twice charges exactly once", func(t *testing.T) {
		s := newSession("20")
		now := t0.Add(30 * time.Minute)

		_, err := Accrue(s, now)
		require.NoError(t, err)
		second, err := Accrue(s, now)
		require.NoError(t, err)

		assertMoney(t, "0", second)
		assertMoney(t, "10", s.TotalCost)
	})

	t.Run("clock going backwards charges nothing", func(t *testing.T) {
		s := newSession("20")
		_, err := Accrue(s, t0.Add(time.Hour))
		require.NoError(t, err)
		cost, err := Accrue(s, t0.Add(30*time.Minute))
		require.NoError(t, err)
		assertMoney(t, "0", cost)
		assertMoney(t, "20", s.TotalCost)
	})

	t.Run("ended session rejects accrual", func(t *testing.T) {
		s := newSession("20")
		require.NoError(t, End(s, t0.Add(time.Hour)))
		_, err := Accrue(s, t0.Add(2*time.Hour))
		assert.ErrorIs(t, err, ErrSessionEnded)
	})
}

func TestChangeMode(t *testing.T) {
	change := ModeChange{
		NewMode:         model.ModeMulti,
		NewPricePerHour: dec("30"),
		NewMachineID:    7,
		NewMachineName:  "PS5-1",
		NewRoom:         "room 1",
	}

	t.Run("charges the unbilled interval at the old price", func(t *testing.T) {
		s := newSession("20")
		_, err := Accrue(s, t0.Add(time.Hour))
		require.NoError(t, err)

		entry, err := ChangeMode(s, change, t0.Add(90*time.Minute))
		require.NoError(t, err)

		require.Len(t, s.Logs, 1)
		assertMoney(t, "10", entry.TimeCost) // 0.5h x 20
		assertMoney(t, "30", s.TotalCost)
		assert.Equal(t, model.ModeSingle, entry.OldMode)
		assert.Equal(t, model.ModeMulti, entry.NewMode)
		assert.Equal(t, t0, entry.OldStartTime)
		assert.Equal(t, 1, entry.TimeSpentHours)
		assert.Equal(t, 30, entry.TimeSpentMinutes)
	})

	t.Run("resets the accrual window", func(t *testing.T) {
		s := newSession("20")
		switchAt := t0.Add(90 * time.Minute)
		_, err := ChangeMode(s, change, switchAt)
		require.NoError(t, err)

		assert.Equal(t, switchAt, s.StartTime)
		assert.Equal(t, switchAt, s.LastTimeCheck)
		assertMoney(t, "30", s.PricePerHour)

		// A subsequent accrue must not re-charge the pre-switch interval.
		cost, err := Accrue(s, switchAt.Add(time.Hour))
		require.NoError(t, err)
		assertMoney(t, "30", cost)
	})

	t.Run("applies the session discount to the new rate", func(t *testing.T) {
		s := newSession("20")
		s.Discount = dec("10")
		_, err := ChangeMode(s, change, t0.Add(time.Hour))
		require.NoError(t, err)
		assertMoney(t, "27", s.PricePerHour) // 30 x (1 - 10/100)
	})
}

func TestFoodLines(t *testing.T) {
	t.Run("add then remove round-trips the total exactly", func(t *testing.T) {
		s := newSession("20")
		_, err := Accrue(s, t0.Add(time.Hour))
		require.NoError(t, err)
		before := s.TotalCost

		require.NoError(t, AddFoodDrink(s, "cola", dec("5"), 2))
		assertMoney(t, "30", s.TotalCost)
		require.NoError(t, RemoveFoodDrink(s, 0))

		assert.True(t, before.Equal(s.TotalCost))
		assert.Empty(t, s.DrinksFoods)
	})

	t.Run("same item name merges into one line", func(t *testing.T) {
		s := newSession("20")
		require.NoError(t, AddFoodDrink(s, "cola", dec("5"), 2))
		require.NoError(t, AddFoodDrink(s, "cola", dec("5"), 1))
		require.Len(t, s.DrinksFoods, 1)
		assert.Equal(t, 3, s.DrinksFoods[0].Quantity)
		assertMoney(t, "15", s.TotalCost)
	})

	t.Run("removal never drives the total negative", func(t *testing.T) {
		s := newSession("20")
		require.NoError(t, AddFoodDrink(s, "cola", dec("5"), 2))
		// Simulate a total already partially paid down below the line value.
		s.TotalCost = dec("3")
		require.NoError(t, RemoveFoodDrink(s, 0))
		assertMoney(t, "0", s.TotalCost)
	})

	t.Run("out of range index", func(t *testing.T) {
		s := newSession("20")
		assert.ErrorIs(t, RemoveFoodDrink(s, 0), ErrLineOutOfRange)
		assert.ErrorIs(t, RemoveFoodDrink(s, -1), ErrLineOutOfRange)
	})
}

func TestFinalize(t *testing.T) {
	t.Run("discount and additional cost", func(t *testing.T) {
		q := &model.Quote{BaseTotal: dec("50"), FinalTotal: dec("50")}
		Finalize(q, dec("5"), "regular", dec("2"), "broken controller")
		assertMoney(t, "47", q.FinalTotal)
	})

	t.Run("negative final totals are allowed", func(t *testing.T) {
		q := &model.Quote{BaseTotal: dec("50"), FinalTotal: dec("50")}
		Finalize(q, dec("80"), "goodwill", decimal.Zero, "")
		assertMoney(t, "-30", q.FinalTotal)
	})
}

func TestBuildQuoteRequiresEndedSession(t *testing.T) {
	s := newSession("20")
	_, err := BuildQuote(s, "cashier", t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSessionOpen)
}

// TestSessionLifecycle walks the full reference scenario: an hour of single
// play, a food sale, a mode switch to multi and final payment with a manual
// discount.
func TestSessionLifecycle(t *testing.T) {
	s := newSession("20")

	// T0+1h: first accrual.
	_, err := Accrue(s, t0.Add(time.Hour))
	require.NoError(t, err)
	assertMoney(t, "20", s.TotalCost)

	// Two colas at 5.
	require.NoError(t, AddFoodDrink(s, "cola", dec("5"), 2))
	assertMoney(t, "30", s.TotalCost)

	// T0+1h30m: switch to multi at 30/h.
	entry, err := ChangeMode(s, ModeChange{
		NewMode:         model.ModeMulti,
		NewPricePerHour: dec("30"),
		NewMachineID:    s.MachineID,
		NewMachineName:  s.MachineName,
		NewRoom:         s.Room,
	}, t0.Add(90*time.Minute))
	require.NoError(t, err)
	assertMoney(t, "10", entry.TimeCost)
	assertMoney(t, "40", s.TotalCost)

	// T0+2h30m: one hour under multi, session ends.
	require.NoError(t, End(s, t0.Add(150*time.Minute)))
	assertMoney(t, "70", s.TotalCost)
	require.Len(t, s.Logs, 2)
	assert.Equal(t, model.ModeEnded, s.Logs[1].NewMode)

	q, err := BuildQuote(s, "cashier", t0.Add(150*time.Minute))
	require.NoError(t, err)
	assertMoney(t, "10", q.FoodsDrinksCost)
	assertMoney(t, "60", q.MachineUsageCost)
	assertMoney(t, "70", q.BaseTotal)
	assert.Equal(t, t0, q.StartTime)
	require.Len(t, q.Logs, 2)
	assert.Equal(t, 1, q.Logs[0].LogNumber)
	assert.Equal(t, "01/06/2025, 12:00:00", q.Logs[0].OldStartTime)
	require.Len(t, q.FoodDrinks, 1)
	assert.Equal(t, 1, q.FoodDrinks[0].ItemNumber)

	Finalize(q, dec("5"), "", decimal.Zero, "")
	assertMoney(t, "65", q.FinalTotal)
}
