package dashboard

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/jobs"
	"github.com/Spok95/print-cashier/internal/store/sqlite"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type env struct {
	st   *sqlite.Store
	svc  *Service
	now  time.Time
	sara int64
	omar int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "cashier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	prices, err := pricing.NewProvider(pricing.DefaultCatalog())
	require.NoError(t, err)

	e := &env{st: st, now: time.Now()}
	e.svc = New(st, prices, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.svc.now = func() time.Time { return e.now }

	e.sara, err = st.CreateCustomer(ctx, customers.Customer{Name: "Sara", Phone: "0101"})
	require.NoError(t, err)
	e.omar, err = st.CreateCustomer(ctx, customers.Customer{Name: "Omar", Phone: "0102"})
	require.NoError(t, err)
	return e
}

func (e *env) receipt(t *testing.T, customer int64, total, paid, status string, created, due time.Time) int64 {
	t.Helper()
	li, err := order.NewLine(order.KindPrinting, "job", 1, dec(total))
	require.NoError(t, err)
	id, err := e.st.SaveReceipt(context.Background(), receipts.Receipt{
		CreatedAt:       created,
		CustomerID:      customer,
		Items:           []order.LineItem{li},
		Total:           dec(total),
		Discount:        decimal.Zero,
		AmountPaid:      dec(paid),
		RemainingAmount: receipts.Remaining(dec(total), decimal.Zero, dec(paid)),
		Status:          status,
		DueDate:         date(due),
	})
	require.NoError(t, err)
	return id
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	yesterday := e.now.AddDate(0, 0, -1)

	e.receipt(t, e.sara, "200", "150", "Received", e.now, e.now)
	e.receipt(t, e.omar, "100", "100", "Delivered", e.now, e.now)
	e.receipt(t, e.omar, "80", "0", "Printing", yesterday, yesterday)

	_, err := e.st.AddExpense(ctx, expenses.Expense{CreatedAt: e.now, Description: "ink", Amount: dec("30")})
	require.NoError(t, err)
	_, err = e.st.AddExpense(ctx, expenses.Expense{CreatedAt: yesterday, Description: "rent", Amount: dec("500")})
	require.NoError(t, err)

	sum, err := e.svc.Summary(ctx, e.now)
	require.NoError(t, err)
	assert.Equal(t, e.now.Format("2006-01-02"), sum.Day)
	assert.True(t, dec("250").Equal(sum.Income), sum.Income.String())
	assert.True(t, dec("30").Equal(sum.Expenses), sum.Expenses.String())
	assert.True(t, dec("220").Equal(sum.Profit), sum.Profit.String())
	assert.True(t, dec("130").Equal(sum.TotalDebt), sum.TotalDebt.String())
	assert.Equal(t, 2, sum.OpenJobs)

	sum, err = e.svc.Summary(ctx, yesterday)
	require.NoError(t, err)
	assert.True(t, dec("-500").Equal(sum.Profit), sum.Profit.String())
}

func TestDebtsAndOpenJobs(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	tomorrow := e.now.AddDate(0, 0, 1)

	e.receipt(t, e.sara, "200", "150", "Received", e.now, tomorrow)
	e.receipt(t, e.omar, "100", "40", "Printing", e.now, e.now)
	e.receipt(t, e.omar, "100", "99.995", "Delivered", e.now, e.now)
	e.receipt(t, e.sara, "100", "120", "Finishing", e.now, e.now.AddDate(0, 0, -3))

	debts, err := e.svc.Debts(ctx)
	require.NoError(t, err)
	require.Len(t, debts, 2)
	assert.Equal(t, e.omar, debts[0].CustomerID)
	assert.True(t, dec("60").Equal(debts[0].Total))
	assert.Equal(t, e.sara, debts[1].CustomerID)
	assert.True(t, dec("50").Equal(debts[1].Total))

	open, err := e.svc.OpenJobs(ctx)
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, "Finishing", open[0].Status)
	assert.True(t, open[0].Overdue)
	assert.True(t, open[1].Overdue, "due today counts as overdue")
	assert.False(t, open[2].Overdue)
}

func TestStatusChangedRefreshesCache(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, first.Income.IsZero())

	e.receipt(t, e.sara, "200", "200", "Received", e.now, e.now)
	cached, err := e.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, cached.Income.IsZero())

	e.svc.StatusChanged(ctx, jobs.Event{ReceiptID: 1, To: "Printing"})
	fresh, err := e.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(fresh.Income))
	assert.Equal(t, 1, fresh.OpenJobs)
}

func TestCacheFollowsReceiptsAndExpenses(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.svc.Today(ctx)
	require.NoError(t, err)

	id := e.receipt(t, e.sara, "250", "200", "Received", e.now, e.now)
	e.svc.ReceiptFinalized(ctx, id)
	sum, err := e.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(sum.Income), sum.Income.String())
	assert.True(t, dec("50").Equal(sum.TotalDebt), sum.TotalDebt.String())

	ex := expenses.Expense{CreatedAt: e.now, Description: "paper", Amount: dec("70")}
	ex.ID, err = e.st.AddExpense(ctx, ex)
	require.NoError(t, err)
	e.svc.ExpenseAdded(ctx, ex)
	sum, err = e.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, dec("70").Equal(sum.Expenses), sum.Expenses.String())
	assert.True(t, dec("130").Equal(sum.Profit), sum.Profit.String())
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.svc.Today(ctx)
	require.NoError(t, err)
	e.receipt(t, e.omar, "90", "90", "Received", e.now, e.now)

	e.svc.Invalidate()
	sum, err := e.svc.Today(ctx)
	require.NoError(t, err)
	assert.True(t, dec("90").Equal(sum.Income))
}

func TestYearly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	at := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 12, 0, 0, 0, e.now.Location()) }

	// доход считается по сумме чека, а не по оплате
	e.receipt(t, e.sara, "200", "50", "Received", at(time.March, 3), at(time.March, 3))
	e.receipt(t, e.omar, "100", "100", "Delivered", at(time.March, 20), at(time.March, 20))
	e.receipt(t, e.omar, "40", "0", "Received", at(time.December, 31), at(time.December, 31))
	e.receipt(t, e.omar, "999", "999", "Received", time.Date(2024, 12, 31, 12, 0, 0, 0, e.now.Location()), e.now)
	_, err := e.st.AddExpense(ctx, expenses.Expense{CreatedAt: at(time.March, 5), Description: "ink", Amount: dec("30")})
	require.NoError(t, err)
	_, err = e.st.AddExpense(ctx, expenses.Expense{CreatedAt: at(time.July, 1), Description: "rent", Amount: dec("500")})
	require.NoError(t, err)

	a, err := e.svc.Yearly(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, a.Rows, 12)
	assert.Equal(t, "01", a.Rows[0].Label)
	assert.Equal(t, "12", a.Rows[11].Label)

	assert.True(t, a.Rows[0].Income.IsZero())
	assert.True(t, dec("300").Equal(a.Rows[2].Income), a.Rows[2].Income.String())
	assert.True(t, dec("270").Equal(a.Rows[2].Profit), a.Rows[2].Profit.String())
	assert.True(t, dec("-500").Equal(a.Rows[6].Profit), a.Rows[6].Profit.String())
	assert.True(t, dec("40").Equal(a.Rows[11].Income))

	assert.True(t, dec("340").Equal(a.Total.Income), a.Total.Income.String())
	assert.True(t, dec("530").Equal(a.Total.Expenses), a.Total.Expenses.String())
	assert.True(t, dec("-190").Equal(a.Total.Profit), a.Total.Profit.String())
}

func TestMonthly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	loc := e.now.Location()

	e.receipt(t, e.sara, "120", "0", "Received", time.Date(2024, 2, 29, 18, 0, 0, 0, loc), e.now)
	e.receipt(t, e.sara, "80", "0", "Received", time.Date(2024, 3, 1, 9, 0, 0, 0, loc), e.now)
	_, err := e.st.AddExpense(ctx, expenses.Expense{CreatedAt: time.Date(2024, 2, 1, 8, 0, 0, 0, loc), Description: "ink", Amount: dec("20")})
	require.NoError(t, err)

	a, err := e.svc.Monthly(ctx, 2024, 2)
	require.NoError(t, err)
	require.Len(t, a.Rows, 29)
	assert.Equal(t, 2, a.Month)
	assert.Equal(t, "29", a.Rows[28].Label)
	assert.True(t, dec("-20").Equal(a.Rows[0].Profit), a.Rows[0].Profit.String())
	assert.True(t, dec("120").Equal(a.Rows[28].Income))
	assert.True(t, a.Rows[14].Income.IsZero())
	assert.True(t, dec("100").Equal(a.Total.Profit), a.Total.Profit.String())

	a, err = e.svc.Monthly(ctx, 2023, 2)
	require.NoError(t, err)
	assert.Len(t, a.Rows, 28)

	_, err = e.svc.Monthly(ctx, 2024, 13)
	assert.ErrorIs(t, err, ErrBadPeriod)
	_, err = e.svc.Yearly(ctx, 0)
	assert.ErrorIs(t, err, ErrBadPeriod)
}
