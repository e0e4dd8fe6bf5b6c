// Package dashboard собирает сводку для владельца: выручка, расходы, долги, заказы в работе.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/jobs"
	"github.com/Spok95/print-cashier/internal/store"
)

// DebtFloor: долги меньше копейки не показываем.
var DebtFloor = decimal.RequireFromString("0.01")

type Summary struct {
	Day       string          `json:"day"`
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	Profit    decimal.Decimal `json:"profit"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	OpenJobs  int             `json:"open_jobs"`
	Computed  time.Time       `json:"computed_at"`
}

type Service struct {
	store  store.Repo
	prices *pricing.Provider
	log    *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	cached *Summary
}

func New(st store.Repo, prices *pricing.Provider, log *slog.Logger) *Service {
	return &Service{store: st, prices: prices, log: log, now: time.Now}
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return from, from.AddDate(0, 0, 1)
}

// Summary считает сводку за день day (по локальной дате).
func (s *Service) Summary(ctx context.Context, day time.Time) (Summary, error) {
	from, to := dayBounds(day)
	income, err := s.store.IncomeBetween(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	spent, err := s.store.ExpensesBetween(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	debt, err := s.store.TotalDebt(ctx)
	if err != nil {
		return Summary{}, err
	}
	open, err := s.OpenJobs(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Day:       from.Format("2006-01-02"),
		Income:    income,
		Expenses:  spent,
		Profit:    income.Sub(spent),
		TotalDebt: debt,
		OpenJobs:  len(open),
		Computed:  s.now(),
	}, nil
}

// Today отдаёт закешированную сводку за сегодня, считая её при первом обращении
// или после смены даты.
func (s *Service) Today(ctx context.Context) (Summary, error) {
	today := s.now().Format("2006-01-02")
	s.mu.RLock()
	c := s.cached
	s.mu.RUnlock()
	if c != nil && c.Day == today {
		return *c, nil
	}
	return s.Refresh(ctx)
}

func (s *Service) Refresh(ctx context.Context) (Summary, error) {
	sum, err := s.Summary(ctx, s.now())
	if err != nil {
		return Summary{}, err
	}
	s.mu.Lock()
	s.cached = &sum
	s.mu.Unlock()
	return sum, nil
}

// Invalidate сбрасывает кеш; следующий Today посчитает сводку заново.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *Service) refresh(ctx context.Context, attrs ...any) {
	if _, err := s.Refresh(ctx); err != nil {
		s.Invalidate()
		s.log.Error("dashboard refresh failed", append(attrs, "err", err)...)
		return
	}
	s.log.Debug("dashboard refreshed", attrs...)
}

// StatusChanged пересчитывает сводку после смены статуса заказа.
func (s *Service) StatusChanged(ctx context.Context, ev jobs.Event) {
	s.refresh(ctx, "receipt_id", ev.ReceiptID, "status", ev.To)
}

// ReceiptFinalized: новый чек меняет выручку, долги и заказы в работе.
func (s *Service) ReceiptFinalized(ctx context.Context, receiptID int64) {
	s.refresh(ctx, "receipt_id", receiptID)
}

func (s *Service) ExpenseAdded(ctx context.Context, e expenses.Expense) {
	s.refresh(ctx, "expense_id", e.ID)
}

// Debts: должники, крупные долги первыми.
func (s *Service) Debts(ctx context.Context) ([]receipts.CustomerDebt, error) {
	return s.store.ListDebts(ctx, DebtFloor)
}

// OpenJobs: заказы не в конечном статусе, по сроку сдачи.
func (s *Service) OpenJobs(ctx context.Context) ([]receipts.OpenJob, error) {
	lc, err := jobs.NewLifecycle(s.prices.Catalog().Statuses)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListOpenJobs(ctx, lc.Terminal())
	if err != nil {
		return nil, err
	}
	today := s.now().Format("2006-01-02")
	for i := range list {
		list[i].Overdue = list[i].DueDate.Format("2006-01-02") <= today
	}
	return list, nil
}

var ErrBadPeriod = errors.New("dashboard: bad analysis period")

// Period: строка анализа. Доход здесь: сумма оформленных чеков, не оплат.
type Period struct {
	Label    string          `json:"period"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

type Analysis struct {
	Year  int      `json:"year"`
	Month int      `json:"month,omitempty"`
	Rows  []Period `json:"rows"`
	Total Period   `json:"total"`
}

// Yearly: по строке на каждый месяц года, 01..12, пустые месяцы с нулями.
func (s *Service) Yearly(ctx context.Context, year int) (Analysis, error) {
	if year < 1 || year > 9999 {
		return Analysis{}, fmt.Errorf("%w: year %d", ErrBadPeriod, year)
	}
	loc := s.now().Location()
	a := Analysis{Year: year}
	for m := 1; m <= 12; m++ {
		from := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, loc)
		p, err := s.period(ctx, fmt.Sprintf("%02d", m), from, from.AddDate(0, 1, 0))
		if err != nil {
			return Analysis{}, err
		}
		a.add(p)
	}
	return a, nil
}

// Monthly: по строке на каждый день месяца.
func (s *Service) Monthly(ctx context.Context, year, month int) (Analysis, error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return Analysis{}, fmt.Errorf("%w: %d-%02d", ErrBadPeriod, year, month)
	}
	loc := s.now().Location()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()
	a := Analysis{Year: year, Month: month}
	for d := 1; d <= days; d++ {
		from := first.AddDate(0, 0, d-1)
		p, err := s.period(ctx, fmt.Sprintf("%02d", d), from, from.AddDate(0, 0, 1))
		if err != nil {
			return Analysis{}, err
		}
		a.add(p)
	}
	return a, nil
}

func (s *Service) period(ctx context.Context, label string, from, to time.Time) (Period, error) {
	income, err := s.store.SalesBetween(ctx, from, to)
	if err != nil {
		return Period{}, err
	}
	spent, err := s.store.ExpensesBetween(ctx, from, to)
	if err != nil {
		return Period{}, err
	}
	return Period{Label: label, Income: income, Expenses: spent, Profit: income.Sub(spent)}, nil
}

func (a *Analysis) add(p Period) {
	a.Rows = append(a.Rows, p)
	a.Total.Label = "total"
	a.Total.Income = a.Total.Income.Add(p.Income)
	a.Total.Expenses = a.Total.Expenses.Add(p.Expenses)
	a.Total.Profit = a.Total.Profit.Add(p.Profit)
}
