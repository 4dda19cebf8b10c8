package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"rastreador/internal/core"
	"rastreador/internal/ledger"
)

func TestMemoryStoreKeepsLatestSnapshot(t *testing.T) {
	s := New()

	first := ledger.Snapshot{Budget: decimal.RequireFromString("1000")}
	second := ledger.Snapshot{
		Budget: decimal.RequireFromString("1500"),
		Expenses: []core.Expense{
			{ID: "e1", Description: "groceries"},
		},
	}

	if err := s.WriteSnapshot(context.Background(), first); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
	if err := s.WriteSnapshot(context.Background(), second); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	last := s.Last()
	if !last.Budget.Equal(second.Budget) {
		t.Fatalf("Last() budget = %v, want %v", last.Budget, second.Budget)
	}
	if len(last.Expenses) != 1 || last.Expenses[0].ID != "e1" {
		t.Fatalf("unexpected expenses in last snapshot: %v", last.Expenses)
	}
	if s.Writes() != 2 {
		t.Fatalf("Writes() = %d, want 2", s.Writes())
	}
}
