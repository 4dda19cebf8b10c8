package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

func expense(year, month, desc, amount string, cat core.Category, pay core.PaymentMethod) core.Expense {
	amt, err := core.ParseAmount(amount)
	if err != nil {
		panic(err)
	}
	return core.Expense{
		Year:        year,
		Month:       month,
		Description: desc,
		Amount:      amt,
		DueDate:     core.NewDate(2025, 3, 10),
		Category:    cat,
		Payment:     pay,
	}
}

func sampleExpenses() []core.Expense {
	return []core.Expense{
		expense("2025", "Março", "market", "120.50", core.CategoryFood, core.PaymentDebit),
		expense("2025", "Março", "bus", "4.50", core.CategoryTransport, core.PaymentInstantTransfer),
		expense("2025", "Abril", "cinema", "30.00", core.CategoryLeisure, core.PaymentVoucher),
		expense("2024", "Março", "rent", "900.00", core.CategoryHousing, core.PaymentDebit),
	}
}

func TestTotal(t *testing.T) {
	expenses := sampleExpenses()

	if got := Total(nil, nil); !got.IsZero() {
		t.Fatalf("empty set total = %s, want 0", got)
	}
	if got := Total(expenses, nil); got.String() != "1055" {
		t.Fatalf("unfiltered total = %s, want 1055", got)
	}
	cash := Total(expenses, ByPayment(core.PaymentDebit, core.PaymentInstantTransfer))
	if cash.String() != "1025" {
		t.Fatalf("cash total = %s, want 1025", cash)
	}
	if got := Total(expenses, ByCategory(core.CategoryLeisure)); got.String() != "30" {
		t.Fatalf("leisure total = %s, want 30", got)
	}
}

func TestTotalMatchesSelectedSubsequence(t *testing.T) {
	expenses := sampleExpenses()
	pred := ByPayment(core.PaymentDebit)

	want := decimal.Zero
	for _, e := range expenses {
		if pred(e) {
			want = want.Add(e.Amount)
		}
	}
	if got := Total(expenses, pred); !got.Equal(want) {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestFilter(t *testing.T) {
	expenses := sampleExpenses()

	got := Filter(expenses, "2025", "Março", "")
	if len(got) != 2 || got[0].Description != "market" || got[1].Description != "bus" {
		t.Fatalf("year+month filter returned %d rows in wrong order", len(got))
	}

	// wildcard criteria: empty string and FilterAll behave identically
	if n := len(Filter(expenses, "", "", FilterAll)); n != len(expenses) {
		t.Fatalf("wildcard filter returned %d rows, want %d", n, len(expenses))
	}

	got = Filter(expenses, "", "Março", "Housing")
	if len(got) != 1 || got[0].Description != "rent" {
		t.Fatalf("category filter returned wrong rows: %v", got)
	}

	if got := Filter(expenses, "1999", "", ""); got != nil {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestCategoryBreakdown(t *testing.T) {
	expenses := append(sampleExpenses(),
		expense("2025", "Março", "bakery", "10.00", core.CategoryFood, core.PaymentDebit))

	breakdown := CategoryBreakdown(expenses)
	if len(breakdown) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(breakdown))
	}
	// first appearance order, with Food aggregated across both rows
	if breakdown[0].Category != core.CategoryFood || breakdown[0].Total.String() != "130.5" {
		t.Fatalf("food bucket = %s %s", breakdown[0].Category, breakdown[0].Total)
	}
	if breakdown[3].Category != core.CategoryHousing {
		t.Fatalf("expected Housing last, got %s", breakdown[3].Category)
	}
}
