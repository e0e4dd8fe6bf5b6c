// Package checkout оформляет заказ: сессия кассы и транзакция оформления.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/infra/metrics"
	"github.com/Spok95/print-cashier/internal/jobs"
	"github.com/Spok95/print-cashier/internal/store"
)

var (
	ErrEmptyDraft     = errors.New("checkout: order has no line items")
	ErrNegativeAmount = errors.New("checkout: discount and paid amount must be >= 0")
	ErrNoCustomer     = errors.New("checkout: customer is required")
)

// Payment: то, что кассир вводит при оформлении.
type Payment struct {
	Discount   decimal.Decimal
	AmountPaid decimal.Decimal
	DueDate    time.Time // нулевое значение: сегодня
	Notes      string
}

// StockListener получает материалы, которые после оформления оказались на пороге или в минусе.
type StockListener interface {
	LowStock(ctx context.Context, items []inventory.Item)
}

// ReceiptListener узнаёт о каждом сохранённом чеке после фиксации транзакции.
type ReceiptListener interface {
	ReceiptFinalized(ctx context.Context, receiptID int64)
}

type Finalizer struct {
	store    store.Store
	ledger   *inventory.Ledger
	prices   *pricing.Provider
	log      *slog.Logger
	stock    []StockListener
	receipts []ReceiptListener
	now      func() time.Time
}

func NewFinalizer(st store.Store, ledger *inventory.Ledger, prices *pricing.Provider, log *slog.Logger, stock ...StockListener) *Finalizer {
	return &Finalizer{store: st, ledger: ledger, prices: prices, log: log, stock: stock, now: time.Now}
}

// Subscribe добавляет слушателя чеков. Не для вызова параллельно с Finalize.
func (f *Finalizer) Subscribe(l ReceiptListener) { f.receipts = append(f.receipts, l) }

// Finalize сохраняет чек и списывает материалы одной транзакцией.
// При ошибке ничего не записано, черновик не трогается; очищает его вызывающий.
func (f *Finalizer) Finalize(ctx context.Context, d *order.Draft, p Payment) (int64, error) {
	if d.CustomerID() <= 0 {
		return 0, ErrNoCustomer
	}
	if d.Empty() {
		return 0, ErrEmptyDraft
	}
	if p.Discount.IsNegative() || p.AmountPaid.IsNegative() {
		return 0, ErrNegativeAmount
	}
	lc, err := jobs.NewLifecycle(f.prices.Catalog().Statuses)
	if err != nil {
		return 0, err
	}

	now := f.now()
	due := p.DueDate
	if due.IsZero() {
		due = now
	}
	due = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)

	total := d.Subtotal()
	rec := receipts.Receipt{
		CreatedAt:       now,
		CustomerID:      d.CustomerID(),
		Items:           d.Items(),
		Total:           total,
		Discount:        p.Discount,
		AmountPaid:      p.AmountPaid,
		RemainingAmount: receipts.Remaining(total, p.Discount, p.AmountPaid),
		Status:          lc.First(),
		DueDate:         due,
		Notes:           p.Notes,
	}
	materials := d.Materials()

	start := time.Now()
	var (
		id  int64
		low []inventory.Item
	)
	err = f.store.InTx(ctx, func(r store.Repo) error {
		if _, err := r.GetCustomer(ctx, rec.CustomerID); err != nil {
			return err
		}
		var err error
		if id, err = r.SaveReceipt(ctx, rec); err != nil {
			return fmt.Errorf("checkout: save receipt: %w", err)
		}
		note := fmt.Sprintf("receipt #%d", id)
		for _, m := range materials {
			consume := f.ledger.ConsumeWithinStock
			if m.ConfirmNegative {
				consume = f.ledger.Consume
			}
			res, err := consume(ctx, r, m.InventoryID, m.Quantity, note)
			if err != nil {
				return fmt.Errorf("checkout: consume %d: %w", m.InventoryID, err)
			}
			if err := r.RecordConsumption(ctx, receipts.MaterialConsumption{
				ReceiptID:    id,
				InventoryID:  m.InventoryID,
				QuantityUsed: m.Quantity,
			}); err != nil {
				return fmt.Errorf("checkout: record consumption %d: %w", m.InventoryID, err)
			}
			if res.WentNegative {
				metrics.NegativeStock.Inc()
			}
			if res.Item.Low() {
				low = append(low, res.Item)
			}
		}
		return nil
	})
	metrics.FinalizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FinalizeFailures.Inc()
		f.log.Error("finalize failed", "customer_id", rec.CustomerID, "err", err)
		return 0, err
	}

	metrics.ReceiptsFinalized.Inc()
	f.log.Info("receipt finalized",
		"receipt_id", id,
		"customer_id", rec.CustomerID,
		"total", rec.Total.StringFixed(2),
		"remaining", rec.RemainingAmount.StringFixed(2),
		"materials", len(materials),
	)

	for _, l := range f.receipts {
		l.ReceiptFinalized(ctx, id)
	}
	if len(low) > 0 {
		for _, l := range f.stock {
			l.LowStock(ctx, low)
		}
	}
	return id, nil
}
