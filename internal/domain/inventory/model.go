package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("inventory: item not found")
	ErrNameTaken     = errors.New("inventory: item name already exists")
	ErrNegativeStock = errors.New("inventory: stock would go negative")
	ErrInvalidQty    = errors.New("inventory: qty must be > 0")
)

// Item: расходный материал. Остаток может быть отрицательным, порог; справочный.
type Item struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	StockLevel        float64         `json:"stock_level"`
	LowStockThreshold float64         `json:"low_stock_threshold"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
}

// Low: остаток на пороге или ниже.
func (i Item) Low() bool { return i.StockLevel <= i.LowStockThreshold }

type MoveType string

const (
	MoveIn  MoveType = "in"
	MoveOut MoveType = "out"
)

// Movement: запись журнала движения остатков.
type Movement struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	InventoryID int64     `json:"inventory_id"`
	Qty         float64   `json:"qty"`
	Type        MoveType  `json:"type"`
	Note        string    `json:"note"`
}

// Projection: остаток после предполагаемого списания.
type Projection struct {
	After    float64
	Negative bool
}

// Plan считает остаток после списания qty, ничего не меняя.
func Plan(stock, qty float64) Projection {
	after := stock - qty
	return Projection{After: after, Negative: after < 0}
}
