package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rastreador/internal/ledger"
	applog "rastreador/internal/log"
	"rastreador/internal/services"
	"rastreador/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	repo, err := storage.New(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	book, err := ledger.Load(context.Background(), repo)
	require.NoError(t, err)

	logger := applog.New(applog.DefaultConfig())
	svc := services.NewLedgerService(book, repo, nil, filepath.Join(dir, "backups"), logger)
	return NewServer(":0", svc, logger)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpenseEndpoints(t *testing.T) {
	srv := newTestServer(t)

	create := expenseRequest{
		Year:        2025,
		Month:       3,
		Description: "groceries",
		Amount:      "120,50",
		DueDate:     "05/03/2025",
		Category:    "Food",
		Payment:     "Debit",
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeInto[expenseDTO](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "120,50", created.Amount)
	assert.Equal(t, "2025", created.Year)
	assert.Equal(t, "Março", created.Month)

	// A numeric month filter matches the stored month name.
	rec = doJSON(t, srv, http.MethodGet, "/api/expenses?year=2025&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeInto[[]expenseDTO](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses?month=Mar%C3%A7o", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeInto[[]expenseDTO](t, rec), 1)

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses?month=4", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeInto[[]expenseDTO](t, rec))

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses?category=Transport", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeInto[[]expenseDTO](t, rec))

	rec = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateExpenseValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  expenseRequest
	}{
		{"negative amount", expenseRequest{Year: 2025, Month: 3, Description: "x", Amount: "-5", DueDate: "05/03/2025", Category: "Food", Payment: "Debit"}},
		{"bad date", expenseRequest{Year: 2025, Month: 3, Description: "x", Amount: "5", DueDate: "2025-03-05", Category: "Food", Payment: "Debit"}},
		{"unknown category", expenseRequest{Year: 2025, Month: 3, Description: "x", Amount: "5", DueDate: "05/03/2025", Category: "Pets", Payment: "Debit"}},
		{"unknown payment", expenseRequest{Year: 2025, Month: 3, Description: "x", Amount: "5", DueDate: "05/03/2025", Category: "Food", Payment: "Cash"}},
		{"card reference without card", expenseRequest{Year: 2025, Month: 3, Description: "x", Amount: "5", DueDate: "05/03/2025", Category: "Food", Payment: "CreditCard", CardName: "Ghost"}},
		{"month out of range", expenseRequest{Year: 2025, Month: 13, Description: "x", Amount: "5", DueDate: "05/03/2025", Category: "Food", Payment: "Debit"}},
		{"missing year", expenseRequest{Month: 3, Description: "x", Amount: "5", DueDate: "05/03/2025", Category: "Food", Payment: "Debit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/expenses", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestCardEndpoints(t *testing.T) {
	srv := newTestServer(t)

	create := cardRequest{
		Name:       "Daily",
		Holder:     "A Customer",
		Number:     "4111111111111234",
		Expiry:     "11/27",
		Network:    "Visa",
		Limit:      "2000",
		ClosingDay: 10,
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/cards", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decodeInto[cardDTO](t, rec)
	assert.Equal(t, "**** 1234", card.MaskedNumber)

	// Same name again conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/api/cards", create)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Expense on the card, inside the cycle that closes 10/03.
	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", expenseRequest{
		Year: 2025, Month: 3, Description: "subscription", Amount: "1850",
		DueDate: "05/03/2025", Category: "Leisure", Payment: "CreditCard", CardName: "Daily",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/cards/Daily/invoice?ref=15/03/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	forecast := decodeInto[forecastDTO](t, rec)
	assert.Equal(t, "1850,00", forecast.Total)
	assert.Equal(t, "11/02/2025", forecast.CycleStart)
	assert.Equal(t, "10/03/2025", forecast.CycleEnd)

	rec = doJSON(t, srv, http.MethodGet, "/api/cards/Daily/utilization", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	util := decodeInto[utilizationDTO](t, rec)
	assert.InDelta(t, 92.5, util.Percent, 0.001)
	assert.True(t, util.Warning)

	rec = doJSON(t, srv, http.MethodGet, "/api/cards/Ghost/utilization", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	card.ClosingDay = 15
	rec = doJSON(t, srv, http.MethodPut, "/api/cards/"+card.ID, cardRequest{
		Name: "Daily", Holder: "A Customer", Number: "**** 1234",
		Expiry: "11/27", Network: "Visa", Limit: "2500", ClosingDay: 15,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeInto[cardDTO](t, rec)
	assert.Equal(t, 15, updated.ClosingDay)
	assert.Equal(t, "2500,00", updated.Limit)
}

func TestGoalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", goalRequest{
		Name: "Vacation", Target: "5000", Current: "2500",
		Start: "01/01/2025", End: "31/12/2025",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goal := decodeInto[goalDTO](t, rec)
	assert.InDelta(t, 50.0, goal.Percent, 0.001)
	assert.False(t, goal.Complete)

	rec = doJSON(t, srv, http.MethodPut, "/api/goals/"+goal.ID, goalRequest{
		Name: "Vacation", Target: "5000", Current: "5000",
		Start: "01/01/2025", End: "31/12/2025",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeInto[goalDTO](t, rec)
	assert.True(t, updated.Complete)

	rec = doJSON(t, srv, http.MethodDelete, "/api/goals/"+goal.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeInto[[]goalDTO](t, rec))
}

func TestBudgetAndSummary(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/budget", budgetRequest{Amount: "1000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Debit counts against the budget, credit card does not.
	for _, e := range []expenseRequest{
		{Year: 2025, Month: 3, Description: "rent", Amount: "700", DueDate: "01/03/2025", Category: "Housing", Payment: "Debit"},
		{Year: 2025, Month: 3, Description: "transfer", Amount: "500", DueDate: "02/03/2025", Category: "Other", Payment: "InstantTransfer"},
		{Year: 2025, Month: 3, Description: "lunch", Amount: "40", DueDate: "03/03/2025", Category: "Food", Payment: "Voucher"},
	} {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", e)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/budget", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeInto[budgetStatusDTO](t, rec)
	assert.Equal(t, "1000,00", status.Budget)
	assert.Equal(t, "1200,00", status.Spent)
	assert.Equal(t, "0,00", status.Remaining)
	assert.InDelta(t, 120.0, status.Utilization, 0.001)

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=2025&month=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeInto[summaryDTO](t, rec)
	assert.Equal(t, "1240,00", summary.Total)
	require.Len(t, summary.ByCategory, 3)
	assert.Equal(t, "Housing", summary.ByCategory[0].Category)
	assert.Equal(t, "1200,00", summary.Budget.Spent)
}

func TestBackupRestoreEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", expenseRequest{
		Year: 2025, Month: 3, Description: "keep", Amount: "10",
		DueDate: "01/03/2025", Category: "Other", Payment: "Debit",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/backup", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	backup := decodeInto[backupResponse](t, rec)
	require.NotEmpty(t, backup.Path)

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", expenseRequest{
		Year: 2025, Month: 3, Description: "drop", Amount: "10",
		DueDate: "02/03/2025", Category: "Other", Payment: "Debit",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/restore", restoreRequest{Path: backup.Path})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeInto[[]expenseDTO](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "keep", listed[0].Description)

	rec = doJSON(t, srv, http.MethodPost, "/api/restore", restoreRequest{Path: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
