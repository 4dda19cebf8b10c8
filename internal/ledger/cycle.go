package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

// InvoiceForecast is the predicted statement for a card's active billing
// cycle. CycleStart and CycleEnd are nil when the card has no closing day
// recorded, in which case Total is zero.
type InvoiceForecast struct {
	CardName   string          `json:"card_name"`
	Total      decimal.Decimal `json:"total"`
	CycleStart *core.Date      `json:"cycle_start,omitempty"`
	CycleEnd   *core.Date      `json:"cycle_end,omitempty"`
}

// PredictInvoice computes the active statement cycle of a card at the given
// reference date and sums the card's expenses falling inside it.
//
// The cycle ends on the card's closing day: in the reference month when the
// reference day has reached it, otherwise in the previous month. The cycle
// starts the day after the previous closing day. A closing day that a target
// month lacks (e.g. 31 in April) is clamped to that month's last day.
func PredictInvoice(card core.Card, expenses []core.Expense, ref time.Time) InvoiceForecast {
	forecast := InvoiceForecast{CardName: card.Name, Total: decimal.Zero}
	if card.ClosingDay < 1 || card.ClosingDay > 31 {
		return forecast
	}

	end := closingDate(ref.Year(), ref.Month(), card.ClosingDay)
	if ref.Day() < end.Day() {
		py, pm := prevMonth(ref.Year(), ref.Month())
		end = closingDate(py, pm, card.ClosingDay)
	}
	py, pm := prevMonth(end.Year(), end.Time.Month())
	prevEnd := closingDate(py, pm, card.ClosingDay)
	start := core.Date{Time: prevEnd.AddDate(0, 0, 1)}

	inCard := ByCard(card.Name)
	for _, e := range expenses {
		if !inCard(e) || e.DueDate.IsZero() {
			continue
		}
		if e.DueDate.Before(start.Time) || e.DueDate.After(end.Time) {
			continue
		}
		forecast.Total = forecast.Total.Add(e.Amount)
	}

	forecast.CycleStart = &start
	forecast.CycleEnd = &end
	return forecast
}

// closingDate builds the closing date for a month, clamping the requested
// day to the month's last valid day.
func closingDate(year int, month time.Month, day int) core.Date {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return core.NewDate(year, int(month), day)
}

func prevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
