package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
)

type queries struct {
	db dbtx
}

// Время пишется в UTC: строки сравниваются лексикографически.
func utc(t time.Time) time.Time { return t.UTC() }

// ---------- customers ----------

func (q *queries) CreateCustomer(ctx context.Context, c customers.Customer) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO customers (name, phone, notes, created_at)
		VALUES (?,?,?,?)
	`, c.Name, c.Phone, c.Notes, utc(time.Now()))
	if isUniqueViolation(err) {
		return 0, customers.ErrPhoneTaken
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const customerCols = `id, name, phone, notes, created_at`

func scanCustomer(row *sql.Row) (*customers.Customer, error) {
	var c customers.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Notes, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customers.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (q *queries) GetCustomer(ctx context.Context, id int64) (*customers.Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM customers WHERE id = ?`, id))
}

func (q *queries) GetCustomerByPhone(ctx context.Context, phone string) (*customers.Customer, error) {
	return scanCustomer(q.db.QueryRowContext(ctx, `SELECT `+customerCols+` FROM customers WHERE phone = ?`, phone))
}

func (q *queries) SearchCustomers(ctx context.Context, query string, limit int) ([]customers.Customer, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+customerCols+`
		FROM customers
		WHERE LOWER(name) LIKE LOWER('%' || ?1 || '%') OR phone LIKE '%' || ?1 || '%'
		ORDER BY name
		LIMIT ?2
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
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO inventory (name, unit, stock_level, low_stock_threshold, purchase_price)
		VALUES (?,?,?,?,?)
	`, it.Name, it.Unit, it.StockLevel, it.LowStockThreshold, it.PurchasePrice.String())
	if isUniqueViolation(err) {
		return 0, inventory.ErrNameTaken
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) UpdateInventoryItem(ctx context.Context, it inventory.Item) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE inventory
		SET name = ?, unit = ?, low_stock_threshold = ?, purchase_price = ?
		WHERE id = ?
	`, it.Name, it.Unit, it.LowStockThreshold, it.PurchasePrice.String(), it.ID)
	if isUniqueViolation(err) {
		return inventory.ErrNameTaken
	}
	if err != nil {
		return err
	}
	return expectRow(res, inventory.ErrNotFound)
}

const inventoryCols = `id, name, unit, stock_level, low_stock_threshold, purchase_price`

type scanner interface{ Scan(dest ...any) error }

func scanItem(s scanner) (inventory.Item, error) {
	var it inventory.Item
	err := s.Scan(&it.ID, &it.Name, &it.Unit, &it.StockLevel, &it.LowStockThreshold, &it.PurchasePrice)
	return it, err
}

func (q *queries) GetInventoryItem(ctx context.Context, id int64) (*inventory.Item, error) {
	it, err := scanItem(q.db.QueryRowContext(ctx, `SELECT `+inventoryCols+` FROM inventory WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (q *queries) ListInventory(ctx context.Context) ([]inventory.Item, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+inventoryCols+` FROM inventory ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []inventory.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (q *queries) AddStock(ctx context.Context, id int64, delta float64) (float64, error) {
	var level float64
	err := q.db.QueryRowContext(ctx, `
		UPDATE inventory SET stock_level = stock_level + ?
		WHERE id = ?
		RETURNING stock_level
	`, delta, id).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, inventory.ErrNotFound
	}
	return level, err
}

func (q *queries) LogMovement(ctx context.Context, m inventory.Movement) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO inventory_movements (created_at, inventory_id, qty, type, note)
		VALUES (?,?,?,?,?)
	`, utc(time.Now()), m.InventoryID, m.Qty, string(m.Type), m.Note)
	return err
}

func (q *queries) ListMovements(ctx context.Context, inventoryID int64, limit int) ([]inventory.Movement, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, created_at, inventory_id, qty, type, note
		FROM inventory_movements
		WHERE inventory_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
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
		return 0, fmt.Errorf("sqlite: encode line items: %w", err)
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO receipts (created_at, customer_id, receipt_data, total_amount, discount,
		                      amount_paid, remaining_amount, status, due_date, notes)
		VALUES (?,?,?,?,?,?,?,?,?,?)
	`, utc(r.CreatedAt), r.CustomerID, string(data), r.Total.String(), r.Discount.String(),
		r.AmountPaid.String(), r.RemainingAmount.String(), r.Status, utc(r.DueDate), r.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const receiptCols = `id, created_at, customer_id, receipt_data, total_amount, discount,
	amount_paid, remaining_amount, status, due_date, notes`

func scanReceipt(s scanner) (*receipts.Receipt, error) {
	var (
		r    receipts.Receipt
		data string
	)
	if err := s.Scan(&r.ID, &r.CreatedAt, &r.CustomerID, &data, &r.Total, &r.Discount,
		&r.AmountPaid, &r.RemainingAmount, &r.Status, &r.DueDate, &r.Notes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &r.Items); err != nil {
		return nil, fmt.Errorf("sqlite: decode line items of receipt %d: %w", r.ID, err)
	}
	return &r, nil
}

func (q *queries) GetReceipt(ctx context.Context, id int64) (*receipts.Receipt, error) {
	r, err := scanReceipt(q.db.QueryRowContext(ctx, `SELECT `+receiptCols+` FROM receipts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, receipts.ErrNotFound
	}
	return r, err
}

func (q *queries) ListCustomerReceipts(ctx context.Context, customerID int64) ([]receipts.Receipt, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+receiptCols+`
		FROM receipts
		WHERE customer_id = ?
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
	res, err := q.db.ExecContext(ctx, `UPDATE receipts SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectRow(res, receipts.ErrNotFound)
}

func (q *queries) SettleReceipt(ctx context.Context, id int64, s receipts.Settlement) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE receipts
		SET status = ?, amount_paid = ?, remaining_amount = '0'
		WHERE id = ?
	`, s.Status, s.AmountPaid.String(), id)
	if err != nil {
		return err
	}
	return expectRow(res, receipts.ErrNotFound)
}

func (q *queries) RecordConsumption(ctx context.Context, c receipts.MaterialConsumption) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO material_consumption (receipt_id, inventory_id, quantity_used)
		VALUES (?,?,?)
	`, c.ReceiptID, c.InventoryID, c.QuantityUsed)
	return err
}

func (q *queries) ListConsumption(ctx context.Context, receiptID int64) ([]receipts.MaterialConsumption, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, receipt_id, inventory_id, quantity_used
		FROM material_consumption
		WHERE receipt_id = ?
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
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&n)
	return n, err
}

// ---------- expenses ----------

func (q *queries) AddExpense(ctx context.Context, e expenses.Expense) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO expenses (created_at, description, amount)
		VALUES (?,?,?)
	`, utc(e.CreatedAt), e.Description, e.Amount.String())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *queries) ListExpenses(ctx context.Context, from, to time.Time) ([]expenses.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, created_at, description, amount
		FROM expenses
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at
	`, utc(from), utc(to))
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
// Суммы считаются в Go: деньги лежат текстом, а SUM в SQLite перешёл бы на float.

func (q *queries) sumColumn(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var v decimal.Decimal
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, rows.Err()
}

func (q *queries) IncomeBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return q.sumColumn(ctx, `
		SELECT amount_paid FROM receipts WHERE created_at >= ? AND created_at < ?
	`, utc(from), utc(to))
}

func (q *queries) SalesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return q.sumColumn(ctx, `
		SELECT total_amount FROM receipts WHERE created_at >= ? AND created_at < ?
	`, utc(from), utc(to))
}

func (q *queries) ExpensesBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return q.sumColumn(ctx, `
		SELECT amount FROM expenses WHERE created_at >= ? AND created_at < ?
	`, utc(from), utc(to))
}

func (q *queries) TotalDebt(ctx context.Context) (decimal.Decimal, error) {
	return q.sumColumn(ctx, `SELECT remaining_amount FROM receipts`)
}

func (q *queries) ListDebts(ctx context.Context, min decimal.Decimal) ([]receipts.CustomerDebt, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.phone, r.remaining_amount
		FROM receipts r
		JOIN customers c ON c.id = r.customer_id
		ORDER BY c.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCustomer := make(map[int64]*receipts.CustomerDebt)
	var order []int64
	for rows.Next() {
		var (
			d         receipts.CustomerDebt
			remaining decimal.Decimal
		)
		if err := rows.Scan(&d.CustomerID, &d.Name, &d.Phone, &remaining); err != nil {
			return nil, err
		}
		if !remaining.GreaterThan(min) {
			continue
		}
		acc, ok := byCustomer[d.CustomerID]
		if !ok {
			d.Total = decimal.Zero
			acc = &d
			byCustomer[d.CustomerID] = acc
			order = append(order, d.CustomerID)
		}
		acc.Total = acc.Total.Add(remaining)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]receipts.CustomerDebt, 0, len(order))
	for _, id := range order {
		out = append(out, *byCustomer[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

func (q *queries) ListOpenJobs(ctx context.Context, terminal string) ([]receipts.OpenJob, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT r.id, c.name, r.status, r.due_date
		FROM receipts r
		JOIN customers c ON c.id = r.customer_id
		WHERE r.status <> ?
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

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
