// Package services orchestrates ledger mutations across the local database
// and the async export pipeline.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rastreador/internal/amqp"
	"rastreador/internal/core"
	"rastreador/internal/ledger"
	applog "rastreador/internal/log"
	"rastreador/internal/storage"
)

// ChangePublisher announces committed ledger mutations. Publish failures are
// logged and swallowed: the local write already succeeded and the export
// worker rebuilds from the database on its next run.
type ChangePublisher interface {
	PublishLedgerChange(ctx context.Context, entity, id, op string) error
}

// LedgerService coordinates the in-memory book, the SQLite store and the
// change publisher.
type LedgerService struct {
	book      *ledger.Book
	repo      *storage.Repository
	publisher ChangePublisher
	backupDir string
	logger    *applog.Logger
}

func NewLedgerService(book *ledger.Book, repo *storage.Repository, publisher ChangePublisher, backupDir string, logger *applog.Logger) *LedgerService {
	return &LedgerService{
		book:      book,
		repo:      repo,
		publisher: publisher,
		backupDir: backupDir,
		logger:    logger.WithComponent(applog.ComponentLedger),
	}
}

// Book exposes the underlying ledger for read-only queries.
func (s *LedgerService) Book() *ledger.Book {
	return s.book
}

// AddExpense validates and records an expense, then announces the change.
func (s *LedgerService) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := s.book.AddExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.EntityExpense, created.ID, applog.OpCreate)
	return created, nil
}

// RemoveExpense deletes an expense by ID.
func (s *LedgerService) RemoveExpense(ctx context.Context, id string) error {
	if err := s.book.RemoveExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityExpense, id, applog.OpDelete)
	return nil
}

// AddCard registers a credit card.
func (s *LedgerService) AddCard(ctx context.Context, c core.Card) (core.Card, error) {
	created, err := s.book.AddCard(ctx, c)
	if err != nil {
		return core.Card{}, err
	}
	s.publish(ctx, amqp.EntityCard, created.ID, applog.OpCreate)
	return created, nil
}

// UpdateCard replaces a card's fields.
func (s *LedgerService) UpdateCard(ctx context.Context, c core.Card) error {
	if err := s.book.UpdateCard(ctx, c); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityCard, c.ID, applog.OpUpdate)
	return nil
}

// RemoveCard deletes a card by ID.
func (s *LedgerService) RemoveCard(ctx context.Context, id string) error {
	if err := s.book.RemoveCard(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityCard, id, applog.OpDelete)
	return nil
}

// AddGoal registers a savings goal.
func (s *LedgerService) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	created, err := s.book.AddGoal(ctx, g)
	if err != nil {
		return core.Goal{}, err
	}
	s.publish(ctx, amqp.EntityGoal, created.ID, applog.OpCreate)
	return created, nil
}

// UpdateGoal replaces a goal's fields.
func (s *LedgerService) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := s.book.UpdateGoal(ctx, g); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityGoal, g.ID, applog.OpUpdate)
	return nil
}

// RemoveGoal deletes a goal by ID.
func (s *LedgerService) RemoveGoal(ctx context.Context, id string) error {
	if err := s.book.RemoveGoal(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityGoal, id, applog.OpDelete)
	return nil
}

// SetBudget stores the declared monthly budget.
func (s *LedgerService) SetBudget(ctx context.Context, d decimal.Decimal) error {
	if err := s.book.SetBudget(ctx, d); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityBudget, "", applog.OpUpdate)
	return nil
}

// importRowFields is the column count of an import row: year, month,
// description, amount, due date, category, note, payment, card name.
const importRowFields = 9

// ImportExpenses type-checks raw rows and appends them to the ledger. All
// rows are parsed before anything is written, so a malformed row rejects the
// import with zero inserts. A store failure while writing surfaces mid-batch
// with the rows already written left in place.
func (s *LedgerService) ImportExpenses(ctx context.Context, rows [][]string) (int, error) {
	expenses := make([]core.Expense, 0, len(rows))
	for i, row := range rows {
		e, err := parseImportRow(row)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		expenses = append(expenses, e)
	}

	for _, e := range expenses {
		if _, err := s.book.AddImportedExpense(ctx, e); err != nil {
			return 0, fmt.Errorf("import expense %q: %w", e.Description, err)
		}
	}

	s.logger.InfoContext(ctx, "Imported expenses",
		applog.FieldOperation, applog.OpImport,
		applog.FieldRowCount, len(expenses))
	s.publish(ctx, amqp.EntityExpense, "", applog.OpImport)
	return len(expenses), nil
}

func parseImportRow(row []string) (core.Expense, error) {
	if len(row) != importRowFields {
		return core.Expense{}, fmt.Errorf("expected %d fields, got %d", importRowFields, len(row))
	}

	year, err := strconv.Atoi(strings.TrimSpace(row[0]))
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid year %q", row[0])
	}
	month, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid month %q", row[1])
	}
	monthName, ok := core.MonthName(month)
	if !ok {
		return core.Expense{}, fmt.Errorf("invalid month %q", row[1])
	}
	amount, err := core.ParseAmount(row[3])
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q: %w", row[3], err)
	}
	due, err := core.ParseDate(row[4])
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid due date %q: %w", row[4], err)
	}

	return core.Expense{
		Year:        strconv.Itoa(year),
		Month:       monthName,
		Description: strings.TrimSpace(row[2]),
		Amount:      amount,
		DueDate:     due,
		Category:    core.Category(strings.TrimSpace(row[5])),
		Note:        strings.TrimSpace(row[6]),
		Payment:     core.PaymentMethod(strings.TrimSpace(row[7])),
		CardName:    strings.TrimSpace(row[8]),
	}, nil
}

// Backup writes a timestamped copy of the database and returns its path.
func (s *LedgerService) Backup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	name := fmt.Sprintf("ledger-%s.db", time.Now().Format("20060102-150405"))
	dst := filepath.Join(s.backupDir, name)
	if err := s.repo.Backup(ctx, dst); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	s.logger.InfoContext(ctx, "Backup created",
		applog.FieldOperation, applog.OpBackup,
		applog.FieldPath, dst)
	return dst, nil
}

// Restore replaces the database with a backup and reloads every collection.
func (s *LedgerService) Restore(ctx context.Context, src string) error {
	if err := s.repo.Restore(ctx, src); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if err := s.book.Reload(ctx); err != nil {
		return fmt.Errorf("reload after restore: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger restored",
		applog.FieldOperation, applog.OpRestore,
		applog.FieldPath, src)
	s.publish(ctx, amqp.EntityExpense, "", applog.OpRestore)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, entity, id, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChange(ctx, entity, id, op); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change message",
			applog.FieldEntity, entity,
			applog.FieldEntityID, id,
			applog.FieldOperation, op,
			applog.FieldError, err.Error())
	}
}
