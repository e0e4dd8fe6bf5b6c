package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind: вид строки чека.
type Kind string

const (
	KindPrinting       Kind = "printing"
	KindLamination     Kind = "lamination"
	KindTrimming       Kind = "trimming"
	KindCutting        Kind = "cutting"
	KindBinding        Kind = "binding"
	KindStapling       Kind = "stapling"
	KindMenuLamination Kind = "menu_lamination"
	KindIDCards        Kind = "id_cards"
)

// LineItem: строка чека. Subtotal считается при создании и больше не меняется;
// поля экспортированы только ради JSON-снимка в чеке.
type LineItem struct {
	Kind        Kind            `json:"kind"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewLine строит строку unit*qty.
func NewLine(kind Kind, desc string, qty int, unit decimal.Decimal) (LineItem, error) {
	if qty <= 0 {
		return LineItem{}, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be > 0, got %d", qty)}
	}
	if unit.IsNegative() {
		return LineItem{}, &ValidationError{Field: "unit_price", Reason: "must be >= 0"}
	}
	return LineItem{
		Kind:        kind,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   unit,
		Subtotal:    unit.Mul(decimal.NewFromInt(int64(qty))),
	}, nil
}

// printingLine: строка печати. Итог равен стоимости, цена за штуку cost/n.
// Деление может быть неточным, поэтому итог берётся из cost, а не из unit*n.
func printingLine(desc string, n int, cost decimal.Decimal) (LineItem, error) {
	if n <= 0 {
		return LineItem{}, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("must be > 0, got %d", n)}
	}
	if cost.IsNegative() {
		return LineItem{}, &ValidationError{Field: "printing_cost", Reason: "must be >= 0"}
	}
	return LineItem{
		Kind:        KindPrinting,
		Description: desc,
		Quantity:    n,
		UnitPrice:   cost.DivRound(decimal.NewFromInt(int64(n)), 4),
		Subtotal:    cost,
	}, nil
}

// ValidationError: некорректный ввод; черновик при этом не меняется.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("order: invalid %s: %s", e.Field, e.Reason)
}
