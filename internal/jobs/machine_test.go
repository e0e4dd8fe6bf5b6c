package jobs

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
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/store/sqlite"
)

type recorder struct{ events []Event }

func (r *recorder) StatusChanged(_ context.Context, ev Event) { r.events = append(r.events, ev) }

func setup(t *testing.T, paid string) (*Machine, *sqlite.Store, *recorder, int64) {
	t.Helper()
	ctx := context.Background()
	st, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "cashier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	prices, err := pricing.NewProvider(pricing.DefaultCatalog())
	require.NoError(t, err)

	cid, err := st.CreateCustomer(ctx, customers.Customer{Name: "Sara", Phone: "0122"})
	require.NoError(t, err)

	li, err := order.NewLine(order.KindIDCards, "ID cards", 10, decimal.NewFromInt(20))
	require.NoError(t, err)
	total := decimal.NewFromInt(200)
	amountPaid := decimal.RequireFromString(paid)
	id, err := st.SaveReceipt(ctx, receipts.Receipt{
		CreatedAt:       time.Now(),
		CustomerID:      cid,
		Items:           []order.LineItem{li},
		Total:           total,
		Discount:        decimal.Zero,
		AmountPaid:      amountPaid,
		RemainingAmount: receipts.Remaining(total, decimal.Zero, amountPaid),
		Status:          "Received",
		DueDate:         time.Now(),
	})
	require.NoError(t, err)

	rec := &recorder{}
	m := NewMachine(st, prices, slog.New(slog.NewTextHandler(io.Discard, nil)), rec)
	return m, st, rec, id
}

func TestSetStatus_Intermediate(t *testing.T) {
	ctx := context.Background()
	m, st, rec, id := setup(t, "150")

	ev, err := m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Printing"})
	require.NoError(t, err)
	assert.Equal(t, "Received", ev.From)
	assert.Equal(t, "Printing", ev.To)
	assert.True(t, ev.Settled.IsZero())

	r, err := st.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Printing", r.Status)
	assert.True(t, decimal.NewFromInt(50).Equal(r.RemainingAmount))
	assert.Len(t, rec.events, 1)
}

func TestSetStatus_TerminalWithDebtNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	m, st, rec, id := setup(t, "150")

	_, err := m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Delivered"})
	var sre *SettlementRequiredError
	require.ErrorAs(t, err, &sre)
	assert.True(t, decimal.NewFromInt(50).Equal(sre.Remaining))

	r, err := st.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Received", r.Status)
	assert.True(t, decimal.NewFromInt(150).Equal(r.AmountPaid))
	assert.True(t, decimal.NewFromInt(50).Equal(r.RemainingAmount))
	assert.Empty(t, rec.events)
}

func TestSetStatus_TerminalSettles(t *testing.T) {
	ctx := context.Background()
	m, st, rec, id := setup(t, "150")

	ev, err := m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Delivered", Settle: true})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(ev.Settled))

	r, err := st.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Delivered", r.Status)
	assert.True(t, decimal.NewFromInt(200).Equal(r.AmountPaid))
	assert.True(t, r.RemainingAmount.IsZero())
	require.Len(t, rec.events, 1)
	assert.Equal(t, "Delivered", rec.events[0].To)
}

func TestSetStatus_TerminalWithoutDebtIsUnconditional(t *testing.T) {
	ctx := context.Background()
	m, st, _, id := setup(t, "250") // переплата: остаток -50

	ev, err := m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Delivered"})
	require.NoError(t, err)
	assert.True(t, ev.Settled.IsZero())

	r, err := st.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-50).Equal(r.RemainingAmount))
}

func TestSetStatus_BackwardsAllowedUnknownRejected(t *testing.T) {
	ctx := context.Background()
	m, st, _, id := setup(t, "200")

	_, err := m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Delivered"})
	require.NoError(t, err)
	_, err = m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Printing"})
	require.NoError(t, err)

	_, err = m.SetStatus(ctx, StatusChange{ReceiptID: id, Status: "Lost"})
	assert.ErrorIs(t, err, ErrUnknownStatus)

	r, err := st.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Printing", r.Status)

	_, err = m.SetStatus(ctx, StatusChange{ReceiptID: 404, Status: "Printing"})
	assert.ErrorIs(t, err, receipts.ErrNotFound)
}

func TestLifecycle(t *testing.T) {
	lc, err := NewLifecycle([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a", lc.First())
	assert.Equal(t, "c", lc.Terminal())
	assert.Equal(t, 1, lc.Index("b"))
	assert.False(t, lc.Contains("z"))

	_, err = NewLifecycle(nil)
	assert.ErrorIs(t, err, ErrNoStatuses)
	_, err = NewLifecycle([]string{"a", "a"})
	assert.Error(t, err)
}
