package inventory

import (
	"context"
	"fmt"
	"log/slog"
)

// StockWriter: операции хранилища, через которые идёт любое изменение остатка.
// Реализация должна работать внутри транзакции вызывающего.
type StockWriter interface {
	GetInventoryItem(ctx context.Context, id int64) (*Item, error)
	// AddStock атомарно прибавляет delta к остатку и возвращает новый остаток.
	AddStock(ctx context.Context, id int64, delta float64) (float64, error)
	LogMovement(ctx context.Context, m Movement) error
}

// Result: итог изменения остатка.
type Result struct {
	Item         Item // состояние после изменения
	Before       float64
	WentNegative bool
}

type Ledger struct {
	log *slog.Logger
}

func NewLedger(log *slog.Logger) *Ledger { return &Ledger{log: log} }

// delta > 0 => приход; delta < 0 => списание (в минус только при allowNegative)
func (l *Ledger) apply(ctx context.Context, w StockWriter, id int64, delta float64, mtype MoveType, note string, allowNegative bool) (Result, error) {
	item, err := w.GetInventoryItem(ctx, id)
	if err != nil {
		return Result{}, err
	}
	before := item.StockLevel
	if !allowNegative && before+delta < 0 {
		return Result{}, fmt.Errorf("%w: %s would drop to %g %s", ErrNegativeStock, item.Name, before+delta, item.Unit)
	}

	after, err := w.AddStock(ctx, id, delta)
	if err != nil {
		return Result{}, fmt.Errorf("inventory: update stock %d: %w", id, err)
	}
	if err := w.LogMovement(ctx, Movement{InventoryID: id, Qty: delta, Type: mtype, Note: note}); err != nil {
		return Result{}, fmt.Errorf("inventory: log movement %d: %w", id, err)
	}

	item.StockLevel = after
	return Result{Item: *item, Before: before, WentNegative: after < 0}, nil
}

// Restock: приход материала.
func (l *Ledger) Restock(ctx context.Context, w StockWriter, id int64, qty float64, note string) (Result, error) {
	if qty <= 0 {
		return Result{}, ErrInvalidQty
	}
	res, err := l.apply(ctx, w, id, qty, MoveIn, note, true)
	if err != nil {
		return Result{}, err
	}
	l.log.Info("stock received", "inventory_id", id, "qty", qty, "stock", res.Item.StockLevel)
	return res, nil
}

// Consume: списание без нижней границы. Уход в минус не ошибка, а признак в Result.
func (l *Ledger) Consume(ctx context.Context, w StockWriter, id int64, qty float64, note string) (Result, error) {
	return l.consume(ctx, w, id, qty, note, true)
}

// ConsumeWithinStock списывает, только если остаток не уходит в минус; иначе
// ErrNegativeStock и ничего не записано. Остаток сверяется с тем, что прочитано
// внутри транзакции вызывающего.
func (l *Ledger) ConsumeWithinStock(ctx context.Context, w StockWriter, id int64, qty float64, note string) (Result, error) {
	return l.consume(ctx, w, id, qty, note, false)
}

func (l *Ledger) consume(ctx context.Context, w StockWriter, id int64, qty float64, note string, allowNegative bool) (Result, error) {
	if qty <= 0 {
		return Result{}, ErrInvalidQty
	}
	res, err := l.apply(ctx, w, id, -qty, MoveOut, note, allowNegative)
	if err != nil {
		return Result{}, err
	}
	if res.WentNegative {
		l.log.Warn("stock went negative",
			"inventory_id", id, "name", res.Item.Name, "before", res.Before, "stock", res.Item.StockLevel)
	}
	return res, nil
}
