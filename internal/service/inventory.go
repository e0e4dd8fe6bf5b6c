package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/store"
)

const movementsLimit = 50

type NewItem struct {
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	InitialStock      float64         `json:"initial_stock"`
	LowStockThreshold float64         `json:"low_stock_threshold"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
}

type Inventory struct {
	store  store.Store
	ledger *inventory.Ledger
	log    *slog.Logger
}

func NewInventory(st store.Store, ledger *inventory.Ledger, log *slog.Logger) *Inventory {
	return &Inventory{store: st, ledger: ledger, log: log}
}

func validateItem(name, unit string, threshold float64, price decimal.Decimal) error {
	switch {
	case name == "":
		return &order.ValidationError{Field: "name", Reason: "required"}
	case unit == "":
		return &order.ValidationError{Field: "unit", Reason: "required"}
	case threshold < 0:
		return &order.ValidationError{Field: "low_stock_threshold", Reason: "must be >= 0"}
	case price.IsNegative():
		return &order.ValidationError{Field: "purchase_price", Reason: "must be >= 0"}
	}
	return nil
}

// Create заводит материал. Начальный остаток проводится приходом, чтобы попасть в журнал.
func (s *Inventory) Create(ctx context.Context, n NewItem) (*inventory.Item, error) {
	n.Name, n.Unit = strings.TrimSpace(n.Name), strings.TrimSpace(n.Unit)
	if err := validateItem(n.Name, n.Unit, n.LowStockThreshold, n.PurchasePrice); err != nil {
		return nil, err
	}
	if n.InitialStock < 0 {
		return nil, &order.ValidationError{Field: "initial_stock", Reason: "must be >= 0"}
	}

	var id int64
	err := s.store.InTx(ctx, func(r store.Repo) error {
		var err error
		id, err = r.CreateInventoryItem(ctx, inventory.Item{
			Name:              n.Name,
			Unit:              n.Unit,
			LowStockThreshold: n.LowStockThreshold,
			PurchasePrice:     n.PurchasePrice,
		})
		if err != nil {
			return err
		}
		if n.InitialStock > 0 {
			_, err = s.ledger.Restock(ctx, r, id, n.InitialStock, "initial stock")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("inventory item created", "inventory_id", id, "name", n.Name)
	return s.store.GetInventoryItem(ctx, id)
}

// Update меняет описание материала; остаток меняется только через Restock и оформление.
func (s *Inventory) Update(ctx context.Context, it inventory.Item) error {
	it.Name, it.Unit = strings.TrimSpace(it.Name), strings.TrimSpace(it.Unit)
	if err := validateItem(it.Name, it.Unit, it.LowStockThreshold, it.PurchasePrice); err != nil {
		return err
	}
	return s.store.UpdateInventoryItem(ctx, it)
}

func (s *Inventory) Restock(ctx context.Context, id int64, qty float64, note string) (inventory.Item, error) {
	var res inventory.Result
	err := s.store.InTx(ctx, func(r store.Repo) error {
		var err error
		res, err = s.ledger.Restock(ctx, r, id, qty, note)
		return err
	})
	if err != nil {
		return inventory.Item{}, err
	}
	return res.Item, nil
}

// StockRow: строка складского списка.
type StockRow struct {
	inventory.Item
	Low bool `json:"low"`
}

func (s *Inventory) List(ctx context.Context) ([]StockRow, error) {
	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockRow, 0, len(items))
	for _, it := range items {
		out = append(out, StockRow{Item: it, Low: it.Low()})
	}
	return out, nil
}

// LowStock: только материалы на пороге или ниже.
func (s *Inventory) LowStock(ctx context.Context) ([]inventory.Item, error) {
	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	var out []inventory.Item
	for _, it := range items {
		if it.Low() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Inventory) Movements(ctx context.Context, id int64) ([]inventory.Movement, error) {
	if _, err := s.store.GetInventoryItem(ctx, id); err != nil {
		return nil, err
	}
	return s.store.ListMovements(ctx, id, movementsLimit)
}
