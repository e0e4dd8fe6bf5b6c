package sqlite

import (
	"context"
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
	"github.com/Spok95/print-cashier/internal/store"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cashier.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashier.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestCustomers(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id, err := s.CreateCustomer(ctx, customers.Customer{Name: "Ahmed Print", Phone: "0100", Notes: "vip"})
	require.NoError(t, err)

	_, err = s.CreateCustomer(ctx, customers.Customer{Name: "Other", Phone: "0100"})
	assert.ErrorIs(t, err, customers.ErrPhoneTaken)

	c, err := s.GetCustomerByPhone(ctx, "0100")
	require.NoError(t, err)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, "vip", c.Notes)

	found, err := s.SearchCustomers(ctx, "print", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = s.GetCustomer(ctx, 999)
	assert.ErrorIs(t, err, customers.ErrNotFound)
}

func TestInventory(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	id, err := s.CreateInventoryItem(ctx, inventory.Item{
		Name: "Coated 300", Unit: "sheet", StockLevel: 5, LowStockThreshold: 10, PurchasePrice: dec("1.25"),
	})
	require.NoError(t, err)

	_, err = s.CreateInventoryItem(ctx, inventory.Item{Name: "Coated 300", Unit: "sheet"})
	assert.ErrorIs(t, err, inventory.ErrNameTaken)

	level, err := s.AddStock(ctx, id, -8)
	require.NoError(t, err)
	assert.Equal(t, -3.0, level)

	it, err := s.GetInventoryItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, -3.0, it.StockLevel)
	assert.True(t, dec("1.25").Equal(it.PurchasePrice))

	it.Name = "Coated 300g"
	it.LowStockThreshold = 2
	require.NoError(t, s.UpdateInventoryItem(ctx, *it))
	it, err = s.GetInventoryItem(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Coated 300g", it.Name)
	assert.Equal(t, -3.0, it.StockLevel)

	assert.ErrorIs(t, s.UpdateInventoryItem(ctx, inventory.Item{ID: 404, Name: "x"}), inventory.ErrNotFound)
	_, err = s.AddStock(ctx, 404, 1)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	require.NoError(t, s.LogMovement(ctx, inventory.Movement{InventoryID: id, Qty: -8, Type: inventory.MoveOut, Note: "test"}))
	moves, err := s.ListMovements(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, inventory.MoveOut, moves[0].Type)
}

func seedReceipt(t *testing.T, s *Store, customerID int64, status string, due time.Time, total, paid string) int64 {
	t.Helper()
	li, err := order.NewLine(order.KindIDCards, "ID cards", 10, dec("20"))
	require.NoError(t, err)
	r := receipts.Receipt{
		CreatedAt:  time.Now(),
		CustomerID: customerID,
		Items:      []order.LineItem{li},
		Total:      dec(total),
		Discount:   decimal.Zero,
		AmountPaid: dec(paid),
		Status:     status,
		DueDate:    due,
	}
	r.RemainingAmount = receipts.Remaining(r.Total, r.Discount, r.AmountPaid)
	id, err := s.SaveReceipt(context.Background(), r)
	require.NoError(t, err)
	return id
}

func TestReceipts(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	cid, err := s.CreateCustomer(ctx, customers.Customer{Name: "Mona", Phone: "0111"})
	require.NoError(t, err)
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	id := seedReceipt(t, s, cid, "Received", due, "200", "150.50")

	r, err := s.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.True(t, dec("49.5").Equal(r.RemainingAmount))
	assert.Equal(t, "2026-10-20", r.DueDate.Format("2006-01-02"))
	require.Len(t, r.Items, 1)
	assert.True(t, dec("200").Equal(r.Items[0].Subtotal))

	require.NoError(t, s.SettleReceipt(ctx, id, receipts.Settlement{Status: "Delivered", AmountPaid: dec("200")}))
	r, err = s.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.True(t, r.RemainingAmount.IsZero())
	assert.True(t, dec("200").Equal(r.AmountPaid))
	assert.Equal(t, "Delivered", r.Status)

	assert.ErrorIs(t, s.SetReceiptStatus(ctx, 404, "x"), receipts.ErrNotFound)
	_, err = s.GetReceipt(ctx, 404)
	assert.ErrorIs(t, err, receipts.ErrNotFound)
}

func TestInTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	err := s.InTx(ctx, func(r store.Repo) error {
		if _, err := r.CreateCustomer(ctx, customers.Customer{Name: "Tmp", Phone: "1"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = s.GetCustomerByPhone(ctx, "1")
	assert.ErrorIs(t, err, customers.ErrNotFound)
}

func TestDashboardQueries(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	a, err := s.CreateCustomer(ctx, customers.Customer{Name: "A", Phone: "1"})
	require.NoError(t, err)
	b, err := s.CreateCustomer(ctx, customers.Customer{Name: "B", Phone: "2"})
	require.NoError(t, err)

	early := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
	seedReceipt(t, s, a, "Received", late, "100", "40")   // долг 60
	seedReceipt(t, s, a, "Printing", early, "50", "50")   // без долга
	seedReceipt(t, s, b, "Delivered", early, "300", "100") // долг 200, но закрыт статусом

	debt, err := s.TotalDebt(ctx)
	require.NoError(t, err)
	assert.True(t, dec("260").Equal(debt))

	debts, err := s.ListDebts(ctx, dec("0.01"))
	require.NoError(t, err)
	require.Len(t, debts, 2)
	assert.Equal(t, b, debts[0].CustomerID)
	assert.True(t, dec("60").Equal(debts[1].Total))

	jobs, err := s.ListOpenJobs(ctx, "Delivered")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Printing", jobs[0].Status)

	now := time.Now()
	from := now.Add(-time.Hour)
	to := now.Add(time.Hour)
	income, err := s.IncomeBetween(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, dec("190").Equal(income))
	sales, err := s.SalesBetween(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, dec("450").Equal(sales), sales.String())

	_, err = s.AddExpense(ctx, expenses.Expense{CreatedAt: now, Description: "ink", Amount: dec("35.5")})
	require.NoError(t, err)
	spent, err := s.ExpensesBetween(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, dec("35.5").Equal(spent))

	list, err := s.ListExpenses(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ink", list[0].Description)
}
