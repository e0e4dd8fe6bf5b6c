// Package store описывает хранилище кассы. Реализации: postgres (pgx) и sqlite.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
)

// Repo: запросы хранилища. Один и тот же набор работает и вне, и внутри транзакции.
type Repo interface {
	CreateCustomer(ctx context.Context, c customers.Customer) (int64, error)
	GetCustomer(ctx context.Context, id int64) (*customers.Customer, error)
	GetCustomerByPhone(ctx context.Context, phone string) (*customers.Customer, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]customers.Customer, error)

	CreateInventoryItem(ctx context.Context, it inventory.Item) (int64, error)
	UpdateInventoryItem(ctx context.Context, it inventory.Item) error
	GetInventoryItem(ctx context.Context, id int64) (*inventory.Item, error)
	ListInventory(ctx context.Context) ([]inventory.Item, error)
	AddStock(ctx context.Context, id int64, delta float64) (float64, error)
	LogMovement(ctx context.Context, m inventory.Movement) error
	ListMovements(ctx context.Context, inventoryID int64, limit int) ([]inventory.Movement, error)

	SaveReceipt(ctx context.Context, r receipts.Receipt) (int64, error)
	GetReceipt(ctx context.Context, id int64) (*receipts.Receipt, error)
	ListCustomerReceipts(ctx context.Context, customerID int64) ([]receipts.Receipt, error)
	SetReceiptStatus(ctx context.Context, id int64, status string) error
	SettleReceipt(ctx context.Context, id int64, s receipts.Settlement) error
	RecordConsumption(ctx context.Context, c receipts.MaterialConsumption) error
	ListConsumption(ctx context.Context, receiptID int64) ([]receipts.MaterialConsumption, error)
	CountReceipts(ctx context.Context) (int, error)

	AddExpense(ctx context.Context, e expenses.Expense) (int64, error)
	ListExpenses(ctx context.Context, from, to time.Time) ([]expenses.Expense, error)

	// IncomeBetween: сколько заплатили за чеки периода; SalesBetween: на какую сумму их оформили.
	IncomeBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SalesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ExpensesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	TotalDebt(ctx context.Context) (decimal.Decimal, error)
	ListDebts(ctx context.Context, min decimal.Decimal) ([]receipts.CustomerDebt, error)
	ListOpenJobs(ctx context.Context, terminal string) ([]receipts.OpenJob, error)
}

// Store: хранилище с транзакциями. fn получает Repo, привязанный к транзакции;
// ошибка fn откатывает всё, nil: фиксирует.
type Store interface {
	Repo
	InTx(ctx context.Context, fn func(r Repo) error) error
	Close() error
}
