// Package ledger implements the in-memory ledger and its aggregation rules:
// expense totals and filtered views, the monthly budget indicator, per-card
// utilization, savings-goal progress, and statement-cycle invoice prediction.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

// Predicate selects expenses for aggregation.
type Predicate func(core.Expense) bool

// Total sums the amounts of all expenses satisfying pred. A nil predicate
// matches everything. The sum of an empty selection is zero.
func Total(expenses []core.Expense, pred Predicate) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if pred == nil || pred(e) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// ByPayment matches expenses paid with any of the given methods.
func ByPayment(methods ...core.PaymentMethod) Predicate {
	return func(e core.Expense) bool {
		for _, m := range methods {
			if e.Payment == m {
				return true
			}
		}
		return false
	}
}

// ByCategory matches expenses in the given category.
func ByCategory(c core.Category) Predicate {
	return func(e core.Expense) bool { return e.Category == c }
}

// ByCard matches credit-card expenses charged to the named card. The name
// comparison ignores case and surrounding whitespace, since card names are
// re-typed by users.
func ByCard(name string) Predicate {
	want := strings.TrimSpace(name)
	return func(e core.Expense) bool {
		return e.Payment == core.PaymentCreditCard &&
			strings.EqualFold(strings.TrimSpace(e.CardName), want)
	}
}

// FilterAll is the wildcard criterion accepted by Filter alongside "".
const FilterAll = "All"

// Filter returns the expenses matching every non-wildcard criterion, in the
// insertion order of the source slice. An empty string or FilterAll matches
// any value for that criterion.
func Filter(expenses []core.Expense, year, month, category string) []core.Expense {
	matches := func(got, want string) bool {
		return want == "" || want == FilterAll || got == want
	}
	var out []core.Expense
	for _, e := range expenses {
		if matches(e.Year, year) && matches(e.Month, month) && matches(string(e.Category), category) {
			out = append(out, e)
		}
	}
	return out
}

// CategoryTotal is an amount aggregated per category.
type CategoryTotal struct {
	Category core.Category
	Total    decimal.Decimal
}

// CategoryBreakdown groups expense totals by category, ordered by first
// appearance in the expense list.
func CategoryBreakdown(expenses []core.Expense) []CategoryTotal {
	index := make(map[core.Category]int)
	var out []CategoryTotal
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
	}
	return out
}
