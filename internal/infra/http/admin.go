package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/expenses"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/service"
)

type CustomerBook interface {
	Create(ctx context.Context, name, phone, notes string) (*customers.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*customers.Customer, error)
	Search(ctx context.Context, q string) ([]customers.Customer, error)
	History(ctx context.Context, customerID int64) ([]receipts.Receipt, error)
}

type Stockroom interface {
	Create(ctx context.Context, n service.NewItem) (*inventory.Item, error)
	Update(ctx context.Context, it inventory.Item) error
	Restock(ctx context.Context, id int64, qty float64, note string) (inventory.Item, error)
	List(ctx context.Context) ([]service.StockRow, error)
	Movements(ctx context.Context, id int64) ([]inventory.Movement, error)
}

type ExpenseBook interface {
	Add(ctx context.Context, description string, amount decimal.Decimal) (int64, error)
	ForDay(ctx context.Context, day time.Time) ([]expenses.Expense, error)
}

type customerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type restockRequest struct {
	Qty  float64 `json:"qty"`
	Note string  `json:"note"`
}

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func invalid(err error) bool {
	var ve *order.ValidationError
	return errors.As(err, &ve)
}

// POST /customers
func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer payload")
		return
	}
	c, err := h.customers.Create(r.Context(), req.Name, req.Phone, req.Notes)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, c)
	case invalid(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, customers.ErrPhoneTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error("failed to create customer", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to create customer")
	}
}

// GET /customers?phone=... точный поиск, ?q=... по подстроке.
func (h *Handler) findCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if phone := q.Get("phone"); phone != "" {
		c, err := h.customers.FindByPhone(r.Context(), phone)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, []customers.Customer{*c})
		case errors.Is(err, customers.ErrNotFound):
			writeJSON(w, http.StatusOK, []customers.Customer{})
		default:
			h.log.Error("failed to find customer", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to find customer")
		}
		return
	}

	list, err := h.customers.Search(r.Context(), q.Get("q"))
	if err != nil {
		h.log.Error("failed to search customers", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to search customers")
		return
	}
	if list == nil {
		list = []customers.Customer{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /customers/{id}/receipts: история заказов, новые первыми.
func (h *Handler) customerReceipts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customer")
	if !ok {
		return
	}
	list, err := h.customers.History(r.Context(), id)
	switch {
	case err == nil:
		if list == nil {
			list = []receipts.Receipt{}
		}
		writeJSON(w, http.StatusOK, list)
	case errors.Is(err, customers.ErrNotFound):
		writeError(w, http.StatusNotFound, "customer not found")
	default:
		h.log.Error("failed to load history", "customer_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
	}
}

func (h *Handler) stockError(w http.ResponseWriter, err error, id int64, msg string) {
	switch {
	case invalid(err), errors.Is(err, inventory.ErrInvalidQty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, inventory.ErrNameTaken):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error(msg, "inventory_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

// POST /inventory
func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req service.NewItem
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid item payload")
		return
	}
	it, err := h.stock.Create(r.Context(), req)
	if err != nil {
		h.stockError(w, err, 0, "failed to create item")
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	list, err := h.stock.List(r.Context())
	if err != nil {
		h.log.Error("failed to list inventory", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list inventory")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// PUT /inventory/{id}: имя, единица, порог, цена закупки. Остаток не меняется.
func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}
	var it inventory.Item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, http.StatusBadRequest, "invalid item payload")
		return
	}
	it.ID = id
	if err := h.stock.Update(r.Context(), it); err != nil {
		h.stockError(w, err, id, "failed to update item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /inventory/{id}/restock {"qty": 500, "note": "..."}
func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}
	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid restock payload")
		return
	}
	it, err := h.stock.Restock(r.Context(), id, req.Qty, req.Note)
	if err != nil {
		h.stockError(w, err, id, "failed to restock")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}
	list, err := h.stock.Movements(r.Context(), id)
	if err != nil {
		h.stockError(w, err, id, "failed to list movements")
		return
	}
	if list == nil {
		list = []inventory.Movement{}
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /expenses {"description": "...", "amount": "120.50"}
func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense payload")
		return
	}
	id, err := h.expenses.Add(r.Context(), req.Description, req.Amount)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
	case errors.Is(err, expenses.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("failed to add expense", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to add expense")
	}
}

// GET /expenses?day=2025-03-01, без параметра: сегодня.
func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = d
	}
	list, err := h.expenses.ForDay(r.Context(), day)
	if err != nil {
		h.log.Error("failed to list expenses", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if list == nil {
		list = []expenses.Expense{}
	}
	writeJSON(w, http.StatusOK, list)
}
