// Package jobs ведёт статусы оформленных заказов.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/pricing"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/infra/metrics"
	"github.com/Spok95/print-cashier/internal/store"
)

// SettlementRequiredError: перевод в конечный статус при непогашенном долге
// требует подтверждения закрытия долга. Ничего не изменено.
type SettlementRequiredError struct {
	ReceiptID int64
	Remaining decimal.Decimal
}

func (e *SettlementRequiredError) Error() string {
	return fmt.Sprintf("jobs: receipt %d has %s outstanding; settlement confirmation required",
		e.ReceiptID, e.Remaining.StringFixed(2))
}

type StatusChange struct {
	ReceiptID int64
	Status    string
	Settle    bool // подтверждение: считать остаток оплаченным
}

// Event: состоявшаяся смена статуса.
type Event struct {
	ReceiptID int64           `json:"receipt_id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Settled   decimal.Decimal `json:"settled"` // сколько долга закрыто, 0 если не закрывали
	At        time.Time       `json:"at"`
}

// Listener получает события после фиксации транзакции.
type Listener interface {
	StatusChanged(ctx context.Context, ev Event)
}

type Machine struct {
	store     store.Store
	prices    *pricing.Provider
	log       *slog.Logger
	listeners []Listener
	now       func() time.Time
}

func NewMachine(st store.Store, prices *pricing.Provider, log *slog.Logger, listeners ...Listener) *Machine {
	return &Machine{store: st, prices: prices, log: log, listeners: listeners, now: time.Now}
}

// Subscribe добавляет слушателя. Не для вызова параллельно с SetStatus.
func (m *Machine) Subscribe(l Listener) { m.listeners = append(m.listeners, l) }

// Lifecycle: статусы из текущего прайса.
func (m *Machine) Lifecycle() (Lifecycle, error) {
	return NewLifecycle(m.prices.Catalog().Statuses)
}

// SetStatus пишет статус. Переход в конечный статус при долге > 0 без Settle
// возвращает *SettlementRequiredError; с Settle долг закрывается в той же транзакции.
// Переходы назад разрешены.
func (m *Machine) SetStatus(ctx context.Context, ch StatusChange) (Event, error) {
	lc, err := m.Lifecycle()
	if err != nil {
		return Event{}, err
	}
	if !lc.Contains(ch.Status) {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownStatus, ch.Status)
	}

	ev := Event{ReceiptID: ch.ReceiptID, To: ch.Status, Settled: decimal.Zero}
	err = m.store.InTx(ctx, func(r store.Repo) error {
		rec, err := r.GetReceipt(ctx, ch.ReceiptID)
		if err != nil {
			return err
		}
		ev.From = rec.Status

		if ch.Status == lc.Terminal() && rec.RemainingAmount.IsPositive() {
			if !ch.Settle {
				return &SettlementRequiredError{ReceiptID: rec.ID, Remaining: rec.RemainingAmount}
			}
			ev.Settled = rec.RemainingAmount
			return r.SettleReceipt(ctx, rec.ID, receipts.Settlement{
				Status:     ch.Status,
				AmountPaid: rec.AmountPaid.Add(rec.RemainingAmount),
			})
		}
		return r.SetReceiptStatus(ctx, rec.ID, ch.Status)
	})
	if err != nil {
		return Event{}, err
	}
	ev.At = m.now()

	if from := lc.Index(ev.From); from >= 0 && lc.Index(ev.To) < from {
		m.log.Warn("job status moved backwards", "receipt_id", ev.ReceiptID, "from", ev.From, "to", ev.To)
	}
	m.log.Info("job status changed", "receipt_id", ev.ReceiptID, "from", ev.From, "to", ev.To)
	metrics.StatusChanges.WithLabelValues(ev.To).Inc()
	if ev.Settled.IsPositive() {
		metrics.Settlements.Inc()
		m.log.Info("debt settled on completion", "receipt_id", ev.ReceiptID, "amount", ev.Settled.StringFixed(2))
	}

	for _, l := range m.listeners {
		l.StatusChanged(ctx, ev)
	}
	return ev, nil
}
