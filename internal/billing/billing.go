// Package billing holds the session cost state machine. Every function is a
// pure in-memory transition on the session aggregate; persistence and
// serialization are the store's job. All money goes through decimal to keep
// the receipt arithmetic exact.
package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/timefmt"
)

var (
	// ErrSessionEnded is returned by mutations on a closed session.
	ErrSessionEnded = errors.New("billing: session already ended")
	// ErrSessionOpen is returned when a quote is requested before endSession.
	ErrSessionOpen = errors.New("billing: session has not been ended")
	// ErrLineOutOfRange is returned when removing a food line that does not exist.
	ErrLineOutOfRange = errors.New("billing: food line index out of range")
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice applies the session discount percentage to an hourly rate.
func EffectivePrice(rate, discountPercent decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred.Sub(discountPercent)).Div(hundred)
}

// elapsedCost converts a wall-clock interval into money at the given rate.
func elapsedCost(from, to time.Time, rate decimal.Decimal) decimal.Decimal {
	if !to.After(from) {
		return decimal.Zero
	}
	hours := decimal.NewFromFloat(to.Sub(from).Hours())
	return rate.Mul(hours)
}

// Accrue materializes the cost of the interval since the last check under the
// current price and advances the check mark. Calling it twice with the same
// now charges nothing the second time; the interval is empty.
func Accrue(s *model.Session, now time.Time) (decimal.Decimal, error) {
	if s.Ended {
		return decimal.Zero, ErrSessionEnded
	}
	timeCost := elapsedCost(s.LastTimeCheck, now, s.PricePerHour)
	s.TotalCost = s.TotalCost.Add(timeCost)
	s.LastTimeCheck = now
	return timeCost, nil
}

// ModeChange carries the target configuration for ChangeMode.
type ModeChange struct {
	NewMode         string
	NewPricePerHour decimal.Decimal
	NewMachineID    uint
	NewMachineName  string
	NewRoom         string
}

// ChangeMode closes the current pricing window: it charges the not yet
// materialized remainder of the interval under the OLD price, appends exactly
// one log entry, and restarts the window at now under the new configuration.
// Consecutive windows neither overlap nor gap.
func ChangeMode(s *model.Session, change ModeChange, now time.Time) (*model.SessionLog, error) {
	if s.Ended {
		return nil, ErrSessionEnded
	}

	timeCost := elapsedCost(s.LastTimeCheck, now, s.PricePerHour)
	spent := now.Sub(s.StartTime)

	entry := model.SessionLog{
		SessionID:        s.ID,
		OldMode:          s.Mode,
		NewMode:          change.NewMode,
		OldPricePerHour:  s.PricePerHour,
		NewPricePerHour:  EffectivePrice(change.NewPricePerHour, s.Discount),
		OldMachine:       s.MachineName,
		NewMachine:       change.NewMachineName,
		OldRoom:          s.Room,
		NewRoom:          change.NewRoom,
		OldStartTime:     s.StartTime,
		TimeSpentHours:   int(spent.Hours()),
		TimeSpentMinutes: int(spent.Minutes()) % 60,
		TimeCost:         timeCost,
		Timestamp:        now,
	}

	s.TotalCost = s.TotalCost.Add(timeCost)
	s.StartTime = now
	s.LastTimeCheck = now
	s.Mode = change.NewMode
	s.MachineID = change.NewMachineID
	s.MachineName = change.NewMachineName
	s.Room = change.NewRoom
	s.PricePerHour = EffectivePrice(change.NewPricePerHour, s.Discount)
	s.Logs = append(s.Logs, entry)

	return &s.Logs[len(s.Logs)-1], nil
}

// AddFoodDrink records a sale line on the session. A line with the same item
// name is merged by incrementing its quantity. Inventory is untouched here;
// stock is only deducted when the session is paid.
func AddFoodDrink(s *model.Session, itemName string, price decimal.Decimal, quantity int) error {
	if s.Ended {
		return ErrSessionEnded
	}
	for i := range s.DrinksFoods {
		if s.DrinksFoods[i].ItemName == itemName {
			s.DrinksFoods[i].Quantity += quantity
			s.TotalCost = s.TotalCost.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
			return nil
		}
	}
	s.DrinksFoods = append(s.DrinksFoods, model.FoodLine{
		SessionID: s.ID,
		ItemName:  itemName,
		Price:     price,
		Quantity:  quantity,
	})
	s.TotalCost = s.TotalCost.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	return nil
}

// RemoveFoodDrink drops the line at index and refunds its amount. The total
// is clamped at zero; it can never go negative from a removal.
func RemoveFoodDrink(s *model.Session, index int) error {
	if s.Ended {
		return ErrSessionEnded
	}
	if index < 0 || index >= len(s.DrinksFoods) {
		return ErrLineOutOfRange
	}
	line := s.DrinksFoods[index]
	s.DrinksFoods = append(s.DrinksFoods[:index], s.DrinksFoods[index+1:]...)
	s.TotalCost = s.TotalCost.Sub(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	if s.TotalCost.IsNegative() {
		s.TotalCost = decimal.Zero
	}
	return nil
}

// End performs a final accrual, stamps the end time and appends the terminal
// log entry. Only an ended session can produce a quote.
func End(s *model.Session, now time.Time) error {
	if s.Ended {
		return ErrSessionEnded
	}

	timeCost := elapsedCost(s.LastTimeCheck, now, s.PricePerHour)
	spent := now.Sub(s.StartTime)

	s.TotalCost = s.TotalCost.Add(timeCost)
	s.LastTimeCheck = now
	end := now
	s.EndTime = &end
	s.Ended = true
	s.Logs = append(s.Logs, model.SessionLog{
		SessionID:        s.ID,
		OldMode:          s.Mode,
		NewMode:          model.ModeEnded,
		OldPricePerHour:  s.PricePerHour,
		NewPricePerHour:  s.PricePerHour,
		OldMachine:       s.MachineName,
		NewMachine:       s.MachineName,
		OldRoom:          s.Room,
		NewRoom:          s.Room,
		OldStartTime:     s.StartTime,
		TimeSpentHours:   int(spent.Hours()),
		TimeSpentMinutes: int(spent.Minutes()) % 60,
		TimeCost:         timeCost,
		Timestamp:        now,
	})
	return nil
}

// FoodsDrinksCost sums the session's sale lines.
func FoodsDrinksCost(s *model.Session) decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.DrinksFoods {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// BuildQuote produces the editable draft quote for an ended session. Logs and
// food lines are copied with sequence numbers and en-GB formatted timestamps.
// The draft starts with no manual adjustments, so finalTotal == baseTotal.
func BuildQuote(s *model.Session, cashierName string, now time.Time) (*model.Quote, error) {
	if !s.Ended || s.EndTime == nil {
		return nil, ErrSessionOpen
	}

	foodsCost := FoodsDrinksCost(s)
	startTime := s.StartTime
	if len(s.Logs) > 0 {
		startTime = s.Logs[0].OldStartTime
	}

	q := &model.Quote{
		UserName:         cashierName,
		MachineName:      s.MachineName,
		Room:             s.Room,
		StartTime:        startTime,
		EndTime:          *s.EndTime,
		TotalCost:        s.TotalCost,
		FoodsDrinksCost:  foodsCost,
		MachineUsageCost: s.TotalCost.Sub(foodsCost),
		Date:             timefmt.FormatDateTime(now),
		BaseTotal:        s.TotalCost,
		ManualDiscount:   decimal.Zero,
		AdditionalCost:   decimal.Zero,
		FinalTotal:       s.TotalCost,
	}

	for i, l := range s.Logs {
		q.Logs = append(q.Logs, model.QuoteLog{
			LogNumber:        i + 1,
			OldMode:          l.OldMode,
			NewMode:          l.NewMode,
			OldPricePerHour:  l.OldPricePerHour,
			NewPricePerHour:  l.NewPricePerHour,
			OldMachine:       l.OldMachine,
			NewMachine:       l.NewMachine,
			OldRoom:          l.OldRoom,
			NewRoom:          l.NewRoom,
			OldStartTime:     timefmt.FormatDisplay(l.OldStartTime),
			TimeSpentHours:   l.TimeSpentHours,
			TimeSpentMinutes: l.TimeSpentMinutes,
			TimeCost:         l.TimeCost,
			Timestamp:        timefmt.FormatDisplay(l.Timestamp),
		})
	}
	for i, line := range s.DrinksFoods {
		q.FoodDrinks = append(q.FoodDrinks, model.QuoteLine{
			ItemNumber: i + 1,
			ItemName:   line.ItemName,
			Price:      line.Price,
			Quantity:   line.Quantity,
		})
	}
	return q, nil
}

// Finalize applies the cashier's manual adjustments to a draft quote.
// finalTotal = baseTotal - discount + additionalCost, with NO floor at zero:
// a negative final total is accepted. The asymmetry with RemoveFoodDrink is
// intentional and kept for compatibility with historical receipts.
func Finalize(q *model.Quote, discount decimal.Decimal, discountReason string, additionalCost decimal.Decimal, additionalCostReason string) {
	q.ManualDiscount = discount
	q.DiscountReason = discountReason
	q.AdditionalCost = additionalCost
	q.AdditionalCostReason = additionalCostReason
	q.FinalTotal = q.BaseTotal.Sub(discount).Add(additionalCost)
}
