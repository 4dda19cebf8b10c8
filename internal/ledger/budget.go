package ledger

import (
	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

// BudgetStatus is the budget indicator shown on the dashboard. Only Debit and
// InstantTransfer expenses count against the cash budget; voucher and
// credit-card spending are tracked elsewhere.
type BudgetStatus struct {
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	Utilization float64         `json:"utilization"` // percent, 0 when budget is 0
}

// ComputeBudget derives the budget indicator from the declared monthly budget
// and the current expense collection. Remaining is floored at zero and
// utilization is reported as 0 for a zero budget.
func ComputeBudget(budget decimal.Decimal, expenses []core.Expense) BudgetStatus {
	spent := Total(expenses, ByPayment(core.PaymentDebit, core.PaymentInstantTransfer))

	remaining := budget.Sub(spent)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	var utilization float64
	if budget.IsPositive() {
		utilization, _ = spent.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
	}

	return BudgetStatus{
		Budget:      budget,
		Spent:       spent,
		Remaining:   remaining,
		Utilization: utilization,
	}
}
