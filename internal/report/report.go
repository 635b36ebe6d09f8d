// Package report implements the read-side financial folds over persisted
// quotes and payments. Everything here is pure: callers fetch the rows, the
// fold never touches the database.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gamecafe-backend/internal/model"
	"gamecafe-backend/internal/timefmt"
)

// Window granularities.
const (
	Daily   = "daily"
	Monthly = "monthly"
	Yearly  = "yearly"
)

// Window selects the reporting period: the Date's day, month or year
// depending on Granularity.
type Window struct {
	Granularity string
	Date        time.Time
}

// Validate rejects unknown granularities before any fold runs.
func (w Window) Validate() error {
	switch w.Granularity {
	case Daily, Monthly, Yearly:
		return nil
	}
	return fmt.Errorf("report: unknown granularity %q", w.Granularity)
}

func (w Window) contains(t time.Time) bool {
	switch w.Granularity {
	case Daily:
		return t.Year() == w.Date.Year() && t.Month() == w.Date.Month() && t.Day() == w.Date.Day()
	case Monthly:
		return t.Year() == w.Date.Year() && t.Month() == w.Date.Month()
	case Yearly:
		return t.Year() == w.Date.Year()
	}
	return false
}

// ItemProfit is the per-item food/drink profit line. The computation keeps
// the inventory's historical field roles: Price is the cost basis and
// TotalPrice the unit sale price, and the subtraction order matches the
// legacy reports so figures stay sign-compatible.
type ItemProfit struct {
	ItemName     string          `json:"item_name"`
	QuantitySold int             `json:"quantity_sold"`
	Profit       decimal.Decimal `json:"profit"`
}

// Summary is the aggregated financial report for one window.
type Summary struct {
	Window        string          `json:"window"`
	Date          string          `json:"date"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetTotal      decimal.Decimal `json:"net_total"`
	QuoteCount    int             `json:"quote_count"`
	FoodProfits   []ItemProfit    `json:"food_profits"`
}

// daysInYear follows the legacy rule: 366 in any year divisible by 4,
// otherwise 365. Not the Gregorian rule; kept for report compatibility.
func daysInYear(year int) int64 {
	if year%4 == 0 {
		return 366
	}
	return 365
}

// quoteDate parses the quote's serialized DD/MM/YYYY HH:MM:SS date.
func quoteDate(q model.Quote) (time.Time, bool) {
	t, err := timefmt.Parse(q.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Build folds quotes, payments and the inventory into a Summary for the
// window. Machine income is total_cost minus foods_drinks_cost per quote;
// expenses follow the window rules below; net is the difference.
func Build(w Window, quotes []model.Quote, payments []model.Payment, inventory []model.FoodDrinkItem) (*Summary, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Window:        w.Granularity,
		Date:          timefmt.FormatDate(w.Date),
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	var inWindow []model.Quote
	for _, q := range quotes {
		at, ok := quoteDate(q)
		if !ok || !w.contains(at) {
			continue
		}
		inWindow = append(inWindow, q)
		summary.TotalIncome = summary.TotalIncome.Add(q.TotalCost.Sub(q.FoodsDrinksCost))
	}
	summary.QuoteCount = len(inWindow)

	summary.TotalExpenses = expenses(w, payments)
	summary.NetTotal = summary.TotalIncome.Sub(summary.TotalExpenses)
	summary.FoodProfits = foodProfits(inWindow, inventory)
	return summary, nil
}

// expenses applies the window rules to the payment list. A yearly window
// annualizes recurring payments: daily cost x days in the year, monthly x 12,
// yearly x 1, one-time only when its own date falls in the target year.
// Daily and monthly windows sum the raw cost of payments of the matching
// recurrence type plus any one-time payment dated inside the window.
func expenses(w Window, payments []model.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if w.Granularity == Yearly {
			switch p.Type {
			case model.PaymentDaily:
				total = total.Add(p.Cost.Mul(decimal.NewFromInt(daysInYear(w.Date.Year()))))
			case model.PaymentMonthly:
				total = total.Add(p.Cost.Mul(decimal.NewFromInt(12)))
			case model.PaymentYearly:
				total = total.Add(p.Cost)
			case model.PaymentOnce:
				if at, err := timefmt.Parse(p.Date); err == nil && at.Year() == w.Date.Year() {
					total = total.Add(p.Cost)
				}
			}
			continue
		}

		switch p.Type {
		case w.Granularity:
			total = total.Add(p.Cost)
		case model.PaymentOnce:
			if at, err := timefmt.Parse(p.Date); err == nil && w.contains(at) {
				total = total.Add(p.Cost)
			}
		}
	}
	return total
}

// foodProfits sums quantities per distinct item sold across the window's
// quotes and prices them against the current inventory entry. Items no
// longer present in the inventory are skipped; there is no cost basis to
// price them with.
func foodProfits(quotes []model.Quote, inventory []model.FoodDrinkItem) []ItemProfit {
	byName := make(map[string]model.FoodDrinkItem, len(inventory))
	for _, item := range inventory {
		byName[item.ItemName] = item
	}

	sold := make(map[string]int)
	var order []string
	for _, q := range quotes {
		for _, line := range q.FoodDrinks {
			if _, seen := sold[line.ItemName]; !seen {
				order = append(order, line.ItemName)
			}
			sold[line.ItemName] += line.Quantity
		}
	}

	var profits []ItemProfit
	for _, name := range order {
		item, ok := byName[name]
		if !ok {
			continue
		}
		qty := sold[name]
		profits = append(profits, ItemProfit{
			ItemName:     name,
			QuantitySold: qty,
			Profit:       item.Price.Sub(item.TotalPrice).Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	return profits
}

// MachineSummary is the per-machine income report.
type MachineSummary struct {
	MachineName string          `json:"machine_name"`
	TotalIncome decimal.Decimal `json:"total_income"`
	QuoteCount  int             `json:"quote_count"`
}

// BuildMachine folds machine-usage income for a single machine name across
// all supplied quotes. Session records reference machines by name, so a
// renamed machine detaches its history; the handler resolves the current
// name before calling this.
func BuildMachine(machineName string, quotes []model.Quote) *MachineSummary {
	summary := &MachineSummary{MachineName: machineName, TotalIncome: decimal.Zero}
	for _, q := range quotes {
		if q.MachineName != machineName {
			continue
		}
		summary.QuoteCount++
		summary.TotalIncome = summary.TotalIncome.Add(q.TotalCost.Sub(q.FoodsDrinksCost))
	}
	return summary
}
