package ledger

import (
	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

// UtilizationWarnThreshold is the percentage at which the dashboard raises
// an advisory limit warning for a card.
const UtilizationWarnThreshold = 90.0

// CardUtilization reports how much of a card's limit is consumed by its
// credit-card expenses.
type CardUtilization struct {
	CardName  string          `json:"card_name"`
	Spent     decimal.Decimal `json:"spent"`
	Available decimal.Decimal `json:"available"`
	Percent   float64         `json:"percent"` // 0 when the card has no limit
	Warning   bool            `json:"warning"` // advisory only, never blocks
}

// Utilization aggregates a card's spending against its credit limit.
// Available is floored at zero and percent is 0 for a zero limit.
func Utilization(card core.Card, expenses []core.Expense) CardUtilization {
	spent := Total(expenses, ByCard(card.Name))

	available := card.Limit.Sub(spent)
	if available.IsNegative() {
		available = decimal.Zero
	}

	var percent float64
	if card.Limit.IsPositive() {
		percent = spent.Div(card.Limit).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return CardUtilization{
		CardName:  card.Name,
		Spent:     spent,
		Available: available,
		Percent:   percent,
		Warning:   percent >= UtilizationWarnThreshold,
	}
}
