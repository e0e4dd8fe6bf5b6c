package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/store"
)

// Тесты идут только при заданном APP_TEST_POSTGRES_DSN; база должна быть пустой или тестовой.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("APP_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("APP_TEST_POSTGRES_DSN is not set")
	}
	ctx := context.Background()
	require.NoError(t, Migrate(ctx, dsn))
	s, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// uniq: телефоны и имена не пересекаются между запусками на одной базе.
func uniq(prefix string) string { return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8]) }

func TestReceiptLifecycle(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	phone := uniq("ph")
	cid, err := s.CreateCustomer(ctx, customers.Customer{Name: "Integration", Phone: phone})
	require.NoError(t, err)
	_, err = s.CreateCustomer(ctx, customers.Customer{Name: "Dup", Phone: phone})
	assert.ErrorIs(t, err, customers.ErrPhoneTaken)

	inv, err := s.CreateInventoryItem(ctx, inventory.Item{Name: uniq("paper"), Unit: "sheet", StockLevel: 10})
	require.NoError(t, err)

	li, err := order.NewLine(order.KindIDCards, "ID cards", 10, decimal.NewFromInt(20))
	require.NoError(t, err)
	var id int64
	err = s.InTx(ctx, func(r store.Repo) error {
		id, err = r.SaveReceipt(ctx, receipts.Receipt{
			CreatedAt:       time.Now(),
			CustomerID:      cid,
			Items:           []order.LineItem{li},
			Total:           li.Subtotal,
			AmountPaid:      decimal.NewFromInt(150),
			RemainingAmount: decimal.NewFromInt(50),
			Status:          "Received",
			DueDate:         time.Now(),
		})
		if err != nil {
			return err
		}
		if _, err := r.AddStock(ctx, inv, -12); err != nil {
			return err
		}
		return r.RecordConsumption(ctx, receipts.MaterialConsumption{ReceiptID: id, InventoryID: inv, QuantityUsed: 12})
	})
	require.NoError(t, err)

	it, err := s.GetInventoryItem(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, -2.0, it.StockLevel)

	require.NoError(t, s.SettleReceipt(ctx, id, receipts.Settlement{Status: "Delivered", AmountPaid: decimal.NewFromInt(200)}))
	r, err := s.GetReceipt(ctx, id)
	require.NoError(t, err)
	assert.True(t, r.RemainingAmount.IsZero())
	require.Len(t, r.Items, 1)
	assert.True(t, decimal.NewFromInt(200).Equal(r.Items[0].Subtotal))
}

func TestInTx_Rollback(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	phone := uniq("tmp")
	err := s.InTx(ctx, func(r store.Repo) error {
		if _, err := r.CreateCustomer(ctx, customers.Customer{Name: "Tmp", Phone: phone}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = s.GetCustomerByPhone(ctx, phone)
	assert.ErrorIs(t, err, customers.ErrNotFound)
}
