package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rastreador/internal/core"
)

// Store is the durable mirror of the ledger collections. Every mutation is
// committed to the store before the in-memory state changes, so a store
// failure leaves the Book untouched.
type Store interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id string) error

	ListCards(ctx context.Context) ([]core.Card, error)
	CreateCard(ctx context.Context, c core.Card) error
	UpdateCard(ctx context.Context, c core.Card) error
	DeleteCard(ctx context.Context, id string) error

	ListGoals(ctx context.Context) ([]core.Goal, error)
	CreateGoal(ctx context.Context, g core.Goal) error
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	LoadBudget(ctx context.Context) (decimal.Decimal, error)
	SaveBudget(ctx context.Context, d decimal.Decimal) error
}

// ErrUnknownCard reports a credit-card expense naming a card that is not
// registered in the ledger.
var ErrUnknownCard = errors.New("unknown card")

// Book holds the three entity collections and the declared monthly budget.
// It is the single mutable state of the process; the mutex covers concurrent
// HTTP handlers, all of which run their operation to completion.
type Book struct {
	mu    sync.Mutex
	store Store

	expenses []core.Expense
	cards    []core.Card
	goals    []core.Goal
	budget   decimal.Decimal
}

// Load populates a Book from the store.
func Load(ctx context.Context, store Store) (*Book, error) {
	b := &Book{store: store}
	if err := b.Reload(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Reload replaces all collections with the store's current contents. Used at
// startup and after a backup restore.
func (b *Book) Reload(ctx context.Context) error {
	expenses, err := b.store.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("load expenses: %w", err)
	}
	cards, err := b.store.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	goals, err := b.store.ListGoals(ctx)
	if err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	budget, err := b.store.LoadBudget(ctx)
	if err != nil {
		return fmt.Errorf("load budget: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.expenses = expenses
	b.cards = cards
	b.goals = goals
	b.budget = budget
	return nil
}

// AddExpense validates an expense, assigns its surrogate ID, commits it to
// the store, and appends it to the collection.
func (b *Book) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if strings.TrimSpace(e.CardName) != "" && b.findCardByName(e.CardName) == nil {
		return core.Expense{}, ErrUnknownCard
	}

	e.ID = uuid.NewString()
	if err := b.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("store expense: %w", err)
	}
	b.expenses = append(b.expenses, e)
	return e, nil
}

// AddImportedExpense appends a foreign expense row without re-validating its
// field formats. The caller is expected to have type-checked the tuple shape;
// enum and card-reference checks are deliberately skipped.
func (b *Book) AddImportedExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e.ID = uuid.NewString()
	if err := b.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("store imported expense: %w", err)
	}
	b.expenses = append(b.expenses, e)
	return e, nil
}

// RemoveExpense deletes an expense by its surrogate ID. Returns
// core.ErrNotFound when no such expense exists.
func (b *Book) RemoveExpense(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, e := range b.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}
	if err := b.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	b.expenses = append(b.expenses[:idx], b.expenses[idx+1:]...)
	return nil
}

// AddCard validates and registers a card. Card names are the human-facing
// key linking expenses, so they must be unique.
func (b *Book) AddCard(ctx context.Context, c core.Card) (core.Card, error) {
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.findCardByName(c.Name) != nil {
		return core.Card{}, fmt.Errorf("card %q already registered", c.Name)
	}

	c.ID = uuid.NewString()
	if err := b.store.CreateCard(ctx, c); err != nil {
		return core.Card{}, fmt.Errorf("store card: %w", err)
	}
	b.cards = append(b.cards, c)
	return c, nil
}

// UpdateCard replaces the stored card with the given ID.
func (b *Book) UpdateCard(ctx context.Context, c core.Card) error {
	if err := c.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, got := range b.cards {
		if got.ID == c.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}
	for i, got := range b.cards {
		if i != idx && cardNameEqual(got.Name, c.Name) {
			return fmt.Errorf("card %q already registered", c.Name)
		}
	}
	if err := b.store.UpdateCard(ctx, c); err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	b.cards[idx] = c
	return nil
}

// RemoveCard deletes a card by ID.
func (b *Book) RemoveCard(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, c := range b.cards {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}
	if err := b.store.DeleteCard(ctx, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	b.cards = append(b.cards[:idx], b.cards[idx+1:]...)
	return nil
}

// AddGoal validates and registers a savings goal.
func (b *Book) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	g.ID = uuid.NewString()
	if err := b.store.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("store goal: %w", err)
	}
	b.goals = append(b.goals, g)
	return g, nil
}

// UpdateGoal replaces the stored goal with the given ID.
func (b *Book) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, got := range b.goals {
		if got.ID == g.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}
	if err := b.store.UpdateGoal(ctx, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	b.goals[idx] = g
	return nil
}

// RemoveGoal deletes a goal by ID.
func (b *Book) RemoveGoal(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, g := range b.goals {
		if g.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}
	if err := b.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	b.goals = append(b.goals[:idx], b.goals[idx+1:]...)
	return nil
}

// SetBudget redefines the declared monthly budget. Negative values are
// rejected; zero disables the utilization percentage.
func (b *Book) SetBudget(ctx context.Context, d decimal.Decimal) error {
	if d.IsNegative() {
		return core.ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.SaveBudget(ctx, d); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	b.budget = d
	return nil
}

// Expenses returns a copy of the expense collection in insertion order.
func (b *Book) Expenses() []core.Expense {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.Expense(nil), b.expenses...)
}

// Cards returns a copy of the card collection.
func (b *Book) Cards() []core.Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.Card(nil), b.cards...)
}

// Goals returns a copy of the goal collection.
func (b *Book) Goals() []core.Goal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.Goal(nil), b.goals...)
}

// Budget returns the declared monthly budget.
func (b *Book) Budget() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.budget
}

// CardByName looks a card up by its human-facing name, ignoring case and
// surrounding whitespace.
func (b *Book) CardByName(name string) (core.Card, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c := b.findCardByName(name); c != nil {
		return *c, nil
	}
	return core.Card{}, core.ErrNotFound
}

// BudgetStatus recomputes the budget indicator from the current state.
func (b *Book) BudgetStatus() BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ComputeBudget(b.budget, b.expenses)
}

// UtilizationFor computes the utilization view for the named card.
func (b *Book) UtilizationFor(name string) (CardUtilization, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.findCardByName(name)
	if c == nil {
		return CardUtilization{}, core.ErrNotFound
	}
	return Utilization(*c, b.expenses), nil
}

// ForecastFor predicts the active-cycle invoice for the named card.
func (b *Book) ForecastFor(name string, ref time.Time) (InvoiceForecast, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := b.findCardByName(name)
	if c == nil {
		return InvoiceForecast{}, core.ErrNotFound
	}
	return PredictInvoice(*c, b.expenses, ref), nil
}

// Snapshot assembles the export view handed to the spreadsheet collaborator:
// the full expense and card collections, the budget pair, and an invoice
// forecast per card.
func (b *Book) Snapshot(ref time.Time) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := ComputeBudget(b.budget, b.expenses)
	snap := Snapshot{
		Expenses:  append([]core.Expense(nil), b.expenses...),
		Cards:     append([]core.Card(nil), b.cards...),
		Budget:    status.Budget,
		Remaining: status.Remaining,
	}
	for _, c := range b.cards {
		snap.Forecasts = append(snap.Forecasts, PredictInvoice(c, b.expenses, ref))
	}
	return snap
}

// Snapshot is the point-in-time export view of the ledger.
type Snapshot struct {
	Expenses  []core.Expense
	Cards     []core.Card
	Budget    decimal.Decimal
	Remaining decimal.Decimal
	Forecasts []InvoiceForecast
}

func (b *Book) findCardByName(name string) *core.Card {
	for i := range b.cards {
		if cardNameEqual(b.cards[i].Name, name) {
			return &b.cards[i]
		}
	}
	return nil
}

func cardNameEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
