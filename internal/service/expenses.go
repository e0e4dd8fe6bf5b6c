package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/store"
)

// ExpenseListener узнаёт о новых расходах.
type ExpenseListener interface {
	ExpenseAdded(ctx context.Context, e expenses.Expense)
}

type Expenses struct {
	store     store.Repo
	log       *slog.Logger
	listeners []ExpenseListener
	now       func() time.Time
}

func NewExpenses(st store.Repo, log *slog.Logger, listeners ...ExpenseListener) *Expenses {
	return &Expenses{store: st, log: log, listeners: listeners, now: time.Now}
}

func (s *Expenses) Add(ctx context.Context, description string, amount decimal.Decimal) (int64, error) {
	description = strings.TrimSpace(description)
	if description == "" || !amount.IsPositive() {
		return 0, expenses.ErrInvalid
	}
	e := expenses.Expense{CreatedAt: s.now(), Description: description, Amount: amount}
	id, err := s.store.AddExpense(ctx, e)
	if err != nil {
		return 0, err
	}
	e.ID = id
	s.log.Info("expense added", "expense_id", id, "amount", amount.StringFixed(2))
	for _, l := range s.listeners {
		l.ExpenseAdded(ctx, e)
	}
	return id, nil
}

// ForDay: расходы за локальную дату day.
func (s *Expenses) ForDay(ctx context.Context, day time.Time) ([]expenses.Expense, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.store.ListExpenses(ctx, from, from.AddDate(0, 0, 1))
}
