package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rastreador/internal/core"
	"rastreador/internal/ledger"
	applog "rastreador/internal/log"
	"rastreador/internal/storage"
)

type recordingPublisher struct {
	calls []string
	err   error
}

func (p *recordingPublisher) PublishLedgerChange(_ context.Context, entity, id, op string) error {
	p.calls = append(p.calls, entity+"/"+op)
	return p.err
}

func newTestService(t *testing.T) (*LedgerService, *recordingPublisher) {
	t.Helper()
	dir := t.TempDir()

	repo, err := storage.New(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	book, err := ledger.Load(context.Background(), repo)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	logger := applog.New(applog.DefaultConfig())
	return NewLedgerService(book, repo, pub, filepath.Join(dir, "backups"), logger), pub
}

func validExpense(desc string) core.Expense {
	return core.Expense{
		Year:        "2025",
		Month:       "Março",
		Description: desc,
		Amount:      decimal.RequireFromString("55.90"),
		DueDate:     core.NewDate(2025, 3, 12),
		Category:    core.CategoryFood,
		Payment:     core.PaymentDebit,
	}
}

func TestAddExpensePublishesChange(t *testing.T) {
	svc, pub := newTestService(t)

	created, err := svc.AddExpense(context.Background(), validExpense("market"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, []string{"expense/create"}, pub.calls)
}

func TestAddExpenseInvalidDoesNotPublish(t *testing.T) {
	svc, pub := newTestService(t)

	e := validExpense("bad")
	e.Amount = decimal.RequireFromString("-1")
	_, err := svc.AddExpense(context.Background(), e)
	require.Error(t, err)
	assert.Empty(t, pub.calls)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc, pub := newTestService(t)
	pub.err = errors.New("broker down")

	created, err := svc.AddExpense(context.Background(), validExpense("market"))
	require.NoError(t, err)

	got := svc.Book().Expenses()
	require.Len(t, got, 1)
	assert.Equal(t, created.ID, got[0].ID)
}

func TestCardLifecyclePublishesChanges(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	card, err := svc.AddCard(ctx, core.Card{
		Name:         "Daily",
		Holder:       "A Customer",
		MaskedNumber: core.MaskCardNumber("4111111111111234"),
		Expiry:       "11/27",
		Network:      core.NetworkVisa,
		Limit:        decimal.RequireFromString("2000"),
		ClosingDay:   10,
	})
	require.NoError(t, err)

	card.ClosingDay = 15
	require.NoError(t, svc.UpdateCard(ctx, card))
	require.NoError(t, svc.RemoveCard(ctx, card.ID))

	assert.Equal(t, []string{"card/create", "card/update", "card/delete"}, pub.calls)
}

func TestGoalLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	goal, err := svc.AddGoal(ctx, core.Goal{
		Name:    "Vacation",
		Target:  decimal.RequireFromString("5000"),
		Current: decimal.RequireFromString("100"),
		Start:   core.NewDate(2025, 1, 1),
		End:     core.NewDate(2025, 12, 31),
	})
	require.NoError(t, err)

	goal.Current = decimal.RequireFromString("2500")
	require.NoError(t, svc.UpdateGoal(ctx, goal))

	goals := svc.Book().Goals()
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Current.Equal(decimal.RequireFromString("2500")))

	require.NoError(t, svc.RemoveGoal(ctx, goal.ID))
	assert.Empty(t, svc.Book().Goals())
}

func TestSetBudget(t *testing.T) {
	svc, pub := newTestService(t)

	require.NoError(t, svc.SetBudget(context.Background(), decimal.RequireFromString("1800")))
	assert.True(t, svc.Book().Budget().Equal(decimal.RequireFromString("1800")))
	assert.Equal(t, []string{"budget/update"}, pub.calls)
}

func TestImportExpenses(t *testing.T) {
	svc, _ := newTestService(t)

	rows := [][]string{
		{"2025", "3", "groceries", "120,50", "05/03/2025", "Food", "", "Debit", ""},
		{"2025", "3", "streaming", "30.00", "10/03/2025", "Leisure", "monthly", "CreditCard", "Daily"},
	}

	n, err := svc.ImportExpenses(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := svc.Book().Expenses()
	require.Len(t, got, 2)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, "2025", got[0].Year)
	assert.Equal(t, "Março", got[0].Month)
	assert.Equal(t, "Daily", got[1].CardName)
}

func TestImportExpensesRejectsMalformedRows(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		row  []string
	}{
		{"short row", []string{"2025", "3", "x"}},
		{"bad year", []string{"year", "3", "x", "10", "05/03/2025", "Food", "", "Debit", ""}},
		{"bad month", []string{"2025", "13", "x", "10", "05/03/2025", "Food", "", "Debit", ""}},
		{"bad amount", []string{"2025", "3", "x", "ten", "05/03/2025", "Food", "", "Debit", ""}},
		{"bad date", []string{"2025", "3", "x", "10", "2025-03-05", "Food", "", "Debit", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := []string{"2025", "3", "fine", "10", "05/03/2025", "Food", "", "Debit", ""}
			n, err := svc.ImportExpenses(context.Background(), [][]string{good, tt.row})
			require.Error(t, err)
			assert.Zero(t, n)
			// The batch is rejected as a whole.
			assert.Empty(t, svc.Book().Expenses())
		})
	}
}

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddExpense(ctx, validExpense("before backup"))
	require.NoError(t, err)

	path, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.FileExists(t, path)

	_, err = svc.AddExpense(ctx, validExpense("after backup"))
	require.NoError(t, err)
	require.Len(t, svc.Book().Expenses(), 2)

	require.NoError(t, svc.Restore(ctx, path))
	got := svc.Book().Expenses()
	require.Len(t, got, 1)
	assert.Equal(t, "before backup", got[0].Description)
}
