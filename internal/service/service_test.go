package service

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
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/store/sqlite"
)

func createTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "cashier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestCustomers(t *testing.T) {
	ctx := context.Background()
	st := createTestStore(t)
	svc := NewCustomers(st, discard())

	c, err := svc.Create(ctx, "  Mona Studio ", "010-123 45", "")
	require.NoError(t, err)
	assert.Equal(t, "Mona Studio", c.Name)
	assert.Equal(t, "01012345", c.Phone)

	_, err = svc.Create(ctx, "Other", "010 12345", "")
	assert.ErrorIs(t, err, customers.ErrPhoneTaken)

	var ve *order.ValidationError
	_, err = svc.Create(ctx, "", "0200", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	_, err = svc.Create(ctx, "No phone", " ", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)

	got, err := svc.FindByPhone(ctx, "(010) 12345")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	found, err := svc.Search(ctx, "studio")
	require.NoError(t, err)
	assert.Len(t, found, 1)
	found, err = svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, found)

	for i, paid := range []string{"10", "20"} {
		li, err := order.NewLine(order.KindIDCards, "cards", 1, decimal.NewFromInt(20))
		require.NoError(t, err)
		_, err = st.SaveReceipt(ctx, receipts.Receipt{
			CreatedAt:       time.Now().Add(time.Duration(i) * time.Minute),
			CustomerID:      c.ID,
			Items:           []order.LineItem{li},
			Total:           li.Subtotal,
			AmountPaid:      decimal.RequireFromString(paid),
			RemainingAmount: li.Subtotal.Sub(decimal.RequireFromString(paid)),
			Status:          "Received",
			DueDate:         time.Now(),
		})
		require.NoError(t, err)
	}
	hist, err := svc.History(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.True(t, decimal.NewFromInt(20).Equal(hist[0].AmountPaid), "newest first")

	_, err = svc.History(ctx, 999)
	assert.ErrorIs(t, err, customers.ErrNotFound)
}

func TestInventory(t *testing.T) {
	ctx := context.Background()
	st := createTestStore(t)
	svc := NewInventory(st, inventory.NewLedger(discard()), discard())

	it, err := svc.Create(ctx, NewItem{Name: "Coated 300", Unit: "sheet", InitialStock: 40, LowStockThreshold: 50})
	require.NoError(t, err)
	assert.Equal(t, 40.0, it.StockLevel)

	moves, err := svc.Movements(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, inventory.MoveIn, moves[0].Type)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)

	after, err := svc.Restock(ctx, it.ID, 20, "supplier")
	require.NoError(t, err)
	assert.Equal(t, 60.0, after.StockLevel)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Low)

	_, err = svc.Restock(ctx, it.ID, 0, "")
	assert.ErrorIs(t, err, inventory.ErrInvalidQty)
	_, err = svc.Restock(ctx, 999, 5, "")
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	_, err = svc.Create(ctx, NewItem{Name: "Coated 300", Unit: "sheet"})
	assert.ErrorIs(t, err, inventory.ErrNameTaken)
	_, err = svc.Create(ctx, NewItem{Name: "Film", Unit: "roll", InitialStock: -1})
	var ve *order.ValidationError
	assert.ErrorAs(t, err, &ve)

	it.Name = "Coated 300 gsm"
	it.StockLevel = 9999
	require.NoError(t, svc.Update(ctx, *it))
	got, err := st.GetInventoryItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coated 300 gsm", got.Name)
	assert.Equal(t, 60.0, got.StockLevel, "update does not touch stock")
}

type expenseSpy struct{ got []expenses.Expense }

func (s *expenseSpy) ExpenseAdded(_ context.Context, e expenses.Expense) { s.got = append(s.got, e) }

func TestExpenses(t *testing.T) {
	ctx := context.Background()
	st := createTestStore(t)
	spy := &expenseSpy{}
	svc := NewExpenses(st, discard(), spy)

	id, err := svc.Add(ctx, "toner", decimal.NewFromInt(120))
	require.NoError(t, err)
	require.Len(t, spy.got, 1)
	assert.Equal(t, id, spy.got[0].ID)

	_, err = svc.Add(ctx, "", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, expenses.ErrInvalid)
	_, err = svc.Add(ctx, "free", decimal.Zero)
	assert.ErrorIs(t, err, expenses.ErrInvalid)
	assert.Len(t, spy.got, 1)

	list, err := svc.ForDay(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "toner", list[0].Description)
}
