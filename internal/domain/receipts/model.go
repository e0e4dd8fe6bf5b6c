package receipts

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/order"
)

var ErrNotFound = errors.New("receipts: not found")

// Receipt: оформленный заказ. Создаётся только при оформлении,
// потом меняются лишь статус и поля расчёта.
type Receipt struct {
	ID              int64            `json:"id"`
	CreatedAt       time.Time        `json:"created_at"`
	CustomerID      int64            `json:"customer_id"`
	Items           []order.LineItem `json:"items"`
	Total           decimal.Decimal  `json:"total_amount"`
	Discount        decimal.Decimal  `json:"discount"`
	AmountPaid      decimal.Decimal  `json:"amount_paid"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	Status          string           `json:"status"`
	DueDate         time.Time        `json:"due_date"`
	Notes           string           `json:"notes"`
}

// Remaining: остаток долга; отрицательный, если переплатили.
func Remaining(total, discount, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(discount).Sub(paid)
}

// MaterialConsumption: расход материала по чеку. Только добавляется.
type MaterialConsumption struct {
	ID           int64   `json:"id"`
	ReceiptID    int64   `json:"receipt_id"`
	InventoryID  int64   `json:"inventory_id"`
	QuantityUsed float64 `json:"quantity_used"`
}

// Settlement: смена статуса с закрытием долга (paid += remaining, remaining = 0).
type Settlement struct {
	Status     string
	AmountPaid decimal.Decimal
}

// OpenJob: незакрытый заказ для панели.
type OpenJob struct {
	ReceiptID    int64     `json:"receipt_id"`
	CustomerName string    `json:"customer_name"`
	Status       string    `json:"status"`
	DueDate      time.Time `json:"due_date"`
	Overdue      bool      `json:"overdue"`
}

// CustomerDebt: суммарный долг клиента.
type CustomerDebt struct {
	CustomerID int64           `json:"customer_id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Total      decimal.Decimal `json:"total"`
}
