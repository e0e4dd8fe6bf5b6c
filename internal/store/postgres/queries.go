package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
)

type queries struct {
	db   DBTX
	inTx bool
}

// lock: FOR UPDATE внутри транзакции, пусто вне её.
func (q *queries) lock() string {
	if q.inTx {
		return " FOR UPDATE"
	}
	return ""
}

// ---------- customers ----------

func (q *queries) CreateCustomer(ctx context.Context, c customers.Customer) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO customers (name, phone, notes)
		VALUES ($1,$2,$3)
		RETURNING id
	`, c.Name, c.Phone, c.Notes).Scan(&id)
	if isUniqueViolation(err) {
		return 0, customers.ErrPhoneTaken
	}
	return id, err
}

const customerCols = `id, name, phone, notes, created_at`

func scanCustomer(row pgx.Row) (*customers.Customer, error) {
	var c customers.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Notes, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customers.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (q *queries) GetCustomer(ctx context.Context, id int64) (*customers.Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE id = $1`, id))
}

func (q *queries) GetCustomerByPhone(ctx context.Context, phone string) (*customers.Customer, error) {
	return scanCustomer(q.db.QueryRow(ctx, `SELECT `+customerCols+` FROM customers WHERE phone = $1`, phone))
}

func (q *queries) SearchCustomers(ctx context.Context, query string, limit int) ([]customers.Customer, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+customerCols+`
		FROM customers
		WHERE LOWER(name) LIKE LOWER('%' || $1 || '%') OR phone LIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []customers.Customer
	for rows.Next() {
		var c customers.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Notes, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ---------- inventory ----------

func (q *queries) CreateInventoryItem(ctx context.Context, it inventory.Item) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO inventory (name, unit, stock_level, low_stock_threshold, purchase_price)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, it.Name, it.Unit, it.StockLevel, it.LowStockThreshold, it.PurchasePrice).Scan(&id)
	if isUniqueViolation(err) {
		return 0, inventory.ErrNameTaken
	}
	return id, err
}

// UpdateInventoryItem меняет карточку материала; остаток меняется только через AddStock.
func (q *queries) UpdateInventoryItem(ctx context.Context, it inventory.Item) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE inventory
		SET name = $2, unit = $3, low_stock_threshold = $4, purchase_price = $5
		WHERE id = $1
	`, it.ID, it.Name, it.Unit, it.LowStockThreshold, it.PurchasePrice)
	if isUniqueViolation(err) {
		return inventory.ErrNameTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

const inventoryCols = `id, name, unit, stock_level, low_stock_threshold, purchase_price`

func (q *queries) GetInventoryItem(ctx context.Context, id int64) (*inventory.Item, error) {
	var it inventory.Item
	err := q.db.QueryRow(ctx, `SELECT `+inventoryCols+` FROM inventory WHERE id = $1`+q.lock(), id).
		Scan(&it.ID, &it.Name, &it.Unit, &it.StockLevel, &it.LowStockThreshold, &it.PurchasePrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, inventory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (q *queries) ListInventory(ctx context.Context) ([]inventory.Item, error) {
	rows, err := q.db.Query(ctx, `SELECT `+inventoryCols+` FROM inventory ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Item
	for rows.Next() {
		var it inventory.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.StockLevel, &it.LowStockThreshold, &it.PurchasePrice); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// AddStock обновляет остаток без проверок (разрешаем отрицательные значения).
func (q *queries) AddStock(ctx context.Context, id int64, delta float64) (float64, error) {
	var level float64
	err := q.db.QueryRow(ctx, `
		UPDATE inventory SET stock_level = stock_level + $2
		WHERE id = $1
		RETURNING stock_level
	`, id, delta).Scan(&level)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, inventory.ErrNotFound
	}
	return level, err
}

func (q *queries) LogMovement(ctx context.Context, m inventory.Movement) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO inventory_movements (inventory_id, qty, type, note)
		VALUES ($1,$2,$3,$4)
	`, m.InventoryID, m.Qty, string(m.Type), m.Note)
	return err
}

func (q *queries) ListMovements(ctx context.Context, inventoryID int64, limit int) ([]inventory.Movement, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, created_at, inventory_id, qty, type, note
		FROM inventory_movements
		WHERE inventory_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, inventoryID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Movement
	for rows.Next() {
		var m inventory.Movement
		var typ string
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.InventoryID, &m.Qty, &typ, &m.Note); err != nil {
			return nil, err
		}
		m.Type = inventory.MoveType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---------- receipts ----------

func (q *queries) SaveReceipt(ctx context.Context, r receipts.Receipt) (int64, error) {
	data, err := json.Marshal(r.Items)
	if err != nil {
		return 0, fmt.Errorf("postgres: encode line items: %w", err)
	}
	var id int64
	err = q.db.QueryRow(ctx, `
		INSERT INTO receipts (created_at, customer_id, receipt_data, total_amount, discount,
		                      amount_paid, remaining_amount, status, due_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`, r.CreatedAt, r.CustomerID, data, r.Total, r.Discount,
		r.AmountPaid, r.RemainingAmount, r.Status, r.DueDate, r.Notes).Scan(&id)
	return id, err
}

const receiptCols = `id, created_at, customer_id, receipt_data, total_amount, discount,
	amount_paid, remaining_amount, status, due_date, notes`

func scanReceipt(row pgx.Row) (*receipts.Receipt, error) {
	var (
		r    receipts.Receipt
		data []byte
	)
	if err := row.Scan(&r.ID, &r.CreatedAt, &r.CustomerID, &data, &r.Total, &r.Discount,
		&r.AmountPaid, &r.RemainingAmount, &r.Status, &r.DueDate, &r.Notes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &r.Items); err != nil {
		return nil, fmt.Errorf("postgres: decode line items of receipt %d: %w", r.ID, err)
	}
	return &r, nil
}

func (q *queries) GetReceipt(ctx context.Context, id int64) (*receipts.Receipt, error) {
	r, err := scanReceipt(q.db.QueryRow(ctx, `SELECT `+receiptCols+` FROM receipts WHERE id = $1`+q.lock(), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, receipts.ErrNotFound
	}
	return r, err
}

func (q *queries) ListCustomerReceipts(ctx context.Context, customerID int64) ([]receipts.Receipt, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+receiptCols+`
		FROM receipts
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []receipts.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (q *queries) SetReceiptStatus(ctx context.Context, id int64, status string) error {
	tag, err := q.db.Exec(ctx, `UPDATE receipts SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return receipts.ErrNotFound
	}
	return nil
}

func (q *queries) SettleReceipt(ctx context.Context, id int64, s receipts.Settlement) error {
	tag, err := q.db.Exec(ctx, `
		UPDATE receipts
		SET status = $2, amount_paid = $3, remaining_amount = 0
		WHERE id = $1
	`, id, s.Status, s.AmountPaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return receipts.ErrNotFound
	}
	return nil
}

func (q *queries) RecordConsumption(ctx context.Context, c receipts.MaterialConsumption) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO material_consumption (receipt_id, inventory_id, quantity_used)
		VALUES ($1,$2,$3)
	`, c.ReceiptID, c.InventoryID, c.QuantityUsed)
	return err
}

func (q *queries) ListConsumption(ctx context.Context, receiptID int64) ([]receipts.MaterialConsumption, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, receipt_id, inventory_id, quantity_used
		FROM material_consumption
		WHERE receipt_id = $1
		ORDER BY id
	`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []receipts.MaterialConsumption
	for rows.Next() {
		var c receipts.MaterialConsumption
		if err := rows.Scan(&c.ID, &c.ReceiptID, &c.InventoryID, &c.QuantityUsed); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *queries) CountReceipts(ctx context.Context) (int, error) {
	var n int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&n)
	return n, err
}

// ---------- expenses ----------

func (q *queries) AddExpense(ctx context.Context, e expenses.Expense) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO expenses (created_at, description, amount)
		VALUES ($1,$2,$3)
		RETURNING id
	`, e.CreatedAt, e.Description, e.Amount).Scan(&id)
	return id, err
}

func (q *queries) ListExpenses(ctx context.Context, from, to time.Time) ([]expenses.Expense, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, created_at, description, amount
		FROM expenses
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []expenses.Expense
	for rows.Next() {
		var e expenses.Expense
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Description, &e.Amount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---------- dashboard ----------

func (q *queries) sum(ctx context.Context, sql string, args ...any) (decimal.Decimal, error) {
	var v decimal.Decimal
	if err := q.db.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		return decimal.Zero, err
	}
	return v, nil
}

func (q *queries) IncomeBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return q.sum(ctx, `
		SELECT COALESCE(SUM(amount_paid), 0) FROM receipts
		WHERE created_at >= $1 AND created_at < $2
	`, from, to)
}

func (q *queries) SalesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return q.sum(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM receipts
		WHERE created_at >= $1 AND created_at < $2
	`, from, to)
}

func (q *queries) ExpensesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return q.sum(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses
		WHERE created_at >= $1 AND created_at < $2
	`, from, to)
}

func (q *queries) TotalDebt(ctx context.Context) (decimal.Decimal, error) {
	return q.sum(ctx, `SELECT COALESCE(SUM(remaining_amount), 0) FROM receipts`)
}

func (q *queries) ListDebts(ctx context.Context, min decimal.Decimal) ([]receipts.CustomerDebt, error) {
	rows, err := q.db.Query(ctx, `
		SELECT c.id, c.name, c.phone, SUM(r.remaining_amount) AS total
		FROM receipts r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.remaining_amount > $1
		GROUP BY c.id, c.name, c.phone
		ORDER BY total DESC
	`, min)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []receipts.CustomerDebt
	for rows.Next() {
		var d receipts.CustomerDebt
		if err := rows.Scan(&d.CustomerID, &d.Name, &d.Phone, &d.Total); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q *queries) ListOpenJobs(ctx context.Context, terminal string) ([]receipts.OpenJob, error) {
	rows, err := q.db.Query(ctx, `
		SELECT r.id, c.name, r.status, r.due_date
		FROM receipts r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.status <> $1
		ORDER BY r.due_date, r.id
	`, terminal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []receipts.OpenJob
	for rows.Next() {
		var j receipts.OpenJob
		if err := rows.Scan(&j.ReceiptID, &j.CustomerName, &j.Status, &j.DueDate); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
