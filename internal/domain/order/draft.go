package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
)

// ConsumedMaterial: расход материала со склада, списывается при оформлении.
type ConsumedMaterial struct {
	InventoryID int64   `json:"inventory_id"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`

	// ConfirmNegative: кассир согласился увести остаток в минус.
	ConfirmNegative bool `json:"confirm_negative"`
}

// Draft: заказ в работе у одной кассы. Не потокобезопасен.
type Draft struct {
	customerID int64
	items      []LineItem
	materials  []ConsumedMaterial
}

func NewDraft(customerID int64) *Draft {
	return &Draft{customerID: customerID}
}

func (d *Draft) CustomerID() int64 { return d.customerID }

// Commit добавляет строки рассчитанной позиции. Либо все строки, либо ни одной.
func (d *Draft) Commit(p Pending) ([]LineItem, error) {
	lines, err := p.Lines()
	if err != nil {
		return nil, err
	}
	d.items = append(d.items, lines...)
	return append([]LineItem(nil), lines...), nil
}

// AddIDCards добавляет готовую строку пластиковых карт.
func (d *Draft) AddIDCards(cat *pricing.Catalog, qty int) (LineItem, error) {
	q, err := cat.QuoteIDCards(qty)
	if err != nil {
		return LineItem{}, err
	}
	li, err := NewLine(KindIDCards, "ID cards", q.Quantity, q.UnitPrice)
	if err != nil {
		return LineItem{}, err
	}
	d.items = append(d.items, li)
	return li, nil
}

// AddMaterial добавляет расход. Если с учётом уже добавленного расхода остаток
// уйдёт в минус, нужно явное подтверждение, иначе ErrNegativeStock.
func (d *Draft) AddMaterial(item inventory.Item, qty float64, confirmNegative bool) error {
	if qty <= 0 {
		return &ValidationError{Field: "material_quantity", Reason: fmt.Sprintf("must be > 0, got %g", qty)}
	}
	reserved := 0.0
	for _, m := range d.materials {
		if m.InventoryID == item.ID {
			reserved += m.Quantity
		}
	}
	if p := inventory.Plan(item.StockLevel-reserved, qty); p.Negative && !confirmNegative {
		return fmt.Errorf("%w: %s would drop to %g %s", inventory.ErrNegativeStock, item.Name, p.After, item.Unit)
	}
	d.materials = append(d.materials, ConsumedMaterial{
		InventoryID:     item.ID,
		Name:            item.Name,
		Unit:            item.Unit,
		Quantity:        qty,
		ConfirmNegative: confirmNegative,
	})
	return nil
}

// Items возвращает копию строк в порядке добавления.
func (d *Draft) Items() []LineItem { return append([]LineItem(nil), d.items...) }

func (d *Draft) Materials() []ConsumedMaterial {
	return append([]ConsumedMaterial(nil), d.materials...)
}

func (d *Draft) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, li := range d.items {
		sum = sum.Add(li.Subtotal)
	}
	return sum
}

func (d *Draft) Empty() bool { return len(d.items) == 0 }

// Reset очищает строки и материалы; клиент остаётся.
func (d *Draft) Reset() {
	d.items = nil
	d.materials = nil
}
