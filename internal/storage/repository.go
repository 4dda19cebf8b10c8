// Package storage is the durable mirror of the ledger collections, backed by
// SQLite. It exposes plain CRUD keyed by surrogate ID plus whole-file backup
// and restore.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"rastreador/internal/core"
)

const budgetKey = "monthly_budget"

// Repository is a SQLite-backed ledger store.
type Repository struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the ledger database at path and applies migrations.
func New(path string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	r := &Repository{path: path}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) open() error {
	db, err := sql.Open("sqlite", r.path)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(r.path); err != nil {
		db.Close()
		return fmt.Errorf("run migrations: %w", err)
	}
	r.db = db
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (r *Repository) Path() string {
	return r.path
}

// ListExpenses returns all expenses in insertion order.
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, year, month, description, amount, due_date, category, note, payment, card_name
		FROM expenses ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var amount, due, category, payment string
		if err := rows.Scan(&e.ID, &e.Year, &e.Month, &e.Description, &amount,
			&due, &category, &e.Note, &payment, &e.CardName); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = parseStoredAmount(ctx, amount, e.ID)
		e.DueDate = parseStoredDate(ctx, due, e.ID)
		e.Category = core.Category(category)
		e.Payment = core.PaymentMethod(payment)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateExpense inserts an expense row.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, year, month, description, amount, due_date, category, note, payment, card_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Year, e.Month, e.Description, e.Amount.String(),
		e.DueDate.String(), string(e.Category), e.Note, string(e.Payment), e.CardName)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense by ID. Missing rows are not an error; the
// Book is authoritative for existence checks.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListCards returns all cards in insertion order.
func (r *Repository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, holder, masked_number, expiry, network, credit_limit, closing_day, statement_due
		FROM cards ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []core.Card
	for rows.Next() {
		var c core.Card
		var limit, network, due string
		if err := rows.Scan(&c.ID, &c.Name, &c.Holder, &c.MaskedNumber,
			&c.Expiry, &network, &limit, &c.ClosingDay, &due); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Limit = parseStoredAmount(ctx, limit, c.ID)
		c.Network = core.CardNetwork(network)
		c.StatementDue = parseStoredDate(ctx, due, c.ID)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCard inserts a card row.
func (r *Repository) CreateCard(ctx context.Context, c core.Card) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, holder, masked_number, expiry, network, credit_limit, closing_day, statement_due)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Holder, c.MaskedNumber, c.Expiry, string(c.Network),
		c.Limit.String(), c.ClosingDay, c.StatementDue.String())
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

// UpdateCard replaces a card row by ID.
func (r *Repository) UpdateCard(ctx context.Context, c core.Card) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE cards SET name = ?, holder = ?, masked_number = ?, expiry = ?,
			network = ?, credit_limit = ?, closing_day = ?, statement_due = ?
		WHERE id = ?`,
		c.Name, c.Holder, c.MaskedNumber, c.Expiry, string(c.Network),
		c.Limit.String(), c.ClosingDay, c.StatementDue.String(), c.ID)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}

// DeleteCard removes a card by ID.
func (r *Repository) DeleteCard(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// ListGoals returns all goals in insertion order.
func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target, current, start_date, end_date
		FROM goals ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		var target, current, start, end string
		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &start, &end); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Target = parseStoredAmount(ctx, target, g.ID)
		g.Current = parseStoredAmount(ctx, current, g.ID)
		g.Start = parseStoredDate(ctx, start, g.ID)
		g.End = parseStoredDate(ctx, end, g.ID)
		out = append(out, g)
	}
	return out, rows.Err()
}

// CreateGoal inserts a goal row.
func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target, current, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Target.String(), g.Current.String(),
		g.Start.String(), g.End.String())
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// UpdateGoal replaces a goal row by ID.
func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, target = ?, current = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		g.Name, g.Target.String(), g.Current.String(),
		g.Start.String(), g.End.String(), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

// DeleteGoal removes a goal by ID.
func (r *Repository) DeleteGoal(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// LoadBudget reads the declared monthly budget, zero when never set.
func (r *Repository) LoadBudget(ctx context.Context) (decimal.Decimal, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, budgetKey).Scan(&value)
	if err == sql.ErrNoRows {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load budget: %w", err)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored budget %q: %w", value, err)
	}
	return d, nil
}

// SaveBudget persists the declared monthly budget.
func (r *Repository) SaveBudget(ctx context.Context, d decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		budgetKey, d.String())
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// Backup copies the database file to dst after forcing pending WAL frames
// into the main file.
func (r *Repository) Backup(ctx context.Context, dst string) error {
	if _, err := r.db.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		slog.WarnContext(ctx, "WAL checkpoint before backup failed", "error", err)
	}
	if err := copyFile(r.path, dst); err != nil {
		return fmt.Errorf("copy database to backup: %w", err)
	}
	slog.InfoContext(ctx, "Database backup written", "path", dst)
	return nil
}

// Restore replaces the database with the backup at src. The open handle is
// closed before the file is swapped and reopened only after the copy
// completes, so callers never observe a half-restored store. The caller must
// reload its in-memory collections afterwards.
func (r *Repository) Restore(ctx context.Context, src string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("stat backup file: %w", err)
	}
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close database before restore: %w", err)
	}
	if err := copyFile(src, r.path); err != nil {
		return fmt.Errorf("copy backup into place: %w", err)
	}
	if err := r.open(); err != nil {
		return fmt.Errorf("reopen database after restore: %w", err)
	}
	slog.InfoContext(ctx, "Database restored from backup", "path", src)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// parseStoredAmount tolerates malformed stored values (possible via the
// validation-free import path) by degrading to zero instead of failing
// the whole load.
func parseStoredAmount(ctx context.Context, s, id string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		slog.WarnContext(ctx, "Unparsable stored amount", "id", id, "value", s)
		return decimal.Zero
	}
	return d
}

func parseStoredDate(ctx context.Context, s, id string) core.Date {
	if s == "" {
		return core.Date{}
	}
	d, err := core.ParseDate(s)
	if err != nil {
		slog.WarnContext(ctx, "Unparsable stored date", "id", id, "value", s)
		return core.Date{}
	}
	return d
}
