package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/checkout"
	"github.com/Spok95/print-cashier/internal/dashboard"
	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/inventory"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/jobs"
)

// ReceiptReader: чтение чеков для печатных форм.
type ReceiptReader interface {
	GetReceipt(ctx context.Context, id int64) (*receipts.Receipt, error)
	ListConsumption(ctx context.Context, receiptID int64) ([]receipts.MaterialConsumption, error)
}

type StatusSetter interface {
	SetStatus(ctx context.Context, ch jobs.StatusChange) (jobs.Event, error)
}

type Dashboard interface {
	Today(ctx context.Context) (dashboard.Summary, error)
	Debts(ctx context.Context) ([]receipts.CustomerDebt, error)
	OpenJobs(ctx context.Context) ([]receipts.OpenJob, error)
	Yearly(ctx context.Context, year int) (dashboard.Analysis, error)
	Monthly(ctx context.Context, year, month int) (dashboard.Analysis, error)
}

// Placer проводит заказ целиком.
type Placer interface {
	Place(ctx context.Context, req checkout.OrderRequest) (checkout.OrderResult, error)
}

// Deps: всё, что нужно обработчикам API.
type Deps struct {
	Receipts  ReceiptReader
	Jobs      StatusSetter
	Dashboard Dashboard
	Desk      Placer
	Customers CustomerBook
	Stock     Stockroom
	Expenses  ExpenseBook
}

type Handler struct {
	log       *slog.Logger
	receipts  ReceiptReader
	jobs      StatusSetter
	dash      Dashboard
	desk      Placer
	customers CustomerBook
	stock     Stockroom
	expenses  ExpenseBook
}

func NewHandler(log *slog.Logger, d Deps) *Handler {
	return &Handler{
		log:       log,
		receipts:  d.Receipts,
		jobs:      d.Jobs,
		dash:      d.Dashboard,
		desk:      d.Desk,
		customers: d.Customers,
		stock:     d.Stock,
		expenses:  d.Expenses,
	}
}

type receiptView struct {
	*receipts.Receipt
	Consumption []receipts.MaterialConsumption `json:"material_consumption"`
}

type statusRequest struct {
	Status string `json:"status"`
	Settle bool   `json:"settle"`
}

type errorBody struct {
	Error     string           `json:"error"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+what+" id")
		return 0, false
	}
	return id, true
}

func receiptID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return pathID(w, r, "receipt")
}

// GET /receipts/{id}: чек с позициями и расходом материалов.
func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	rec, err := h.receipts.GetReceipt(ctx, id)
	if errors.Is(err, receipts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "receipt not found")
		return
	}
	if err != nil {
		h.log.Error("failed to load receipt", "receipt_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load receipt")
		return
	}
	cons, err := h.receipts.ListConsumption(ctx, id)
	if err != nil {
		h.log.Error("failed to load consumption", "receipt_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load receipt")
		return
	}
	if cons == nil {
		cons = []receipts.MaterialConsumption{}
	}
	writeJSON(w, http.StatusOK, receiptView{Receipt: rec, Consumption: cons})
}

// POST /receipts/{id}/status {"status": "...", "settle": bool}
func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := receiptID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	ev, err := h.jobs.SetStatus(r.Context(), jobs.StatusChange{ReceiptID: id, Status: req.Status, Settle: req.Settle})
	var sre *jobs.SettlementRequiredError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, ev)
	case errors.As(err, &sre):
		writeJSON(w, http.StatusConflict, errorBody{Error: "settlement confirmation required", Remaining: &sre.Remaining})
	case errors.Is(err, jobs.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, receipts.ErrNotFound):
		writeError(w, http.StatusNotFound, "receipt not found")
	default:
		h.log.Error("failed to set status", "receipt_id", id, "status", req.Status, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update status")
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.dash.Today(r.Context())
	if err != nil {
		h.log.Error("failed to build summary", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) debts(w http.ResponseWriter, r *http.Request) {
	list, err := h.dash.Debts(r.Context())
	if err != nil {
		h.log.Error("failed to list debts", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list debts")
		return
	}
	if list == nil {
		list = []receipts.CustomerDebt{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) openJobs(w http.ResponseWriter, r *http.Request) {
	list, err := h.dash.OpenJobs(r.Context())
	if err != nil {
		h.log.Error("failed to list open jobs", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list open jobs")
		return
	}
	if list == nil {
		list = []receipts.OpenJob{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /dashboard/analysis?year=2025[&month=3]: доход, расходы и прибыль по месяцам или дням.
func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	var a dashboard.Analysis
	if m := q.Get("month"); m != "" {
		month, perr := strconv.Atoi(m)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		a, err = h.dash.Monthly(r.Context(), year, month)
	} else {
		a, err = h.dash.Yearly(r.Context(), year)
	}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, a)
	case errors.Is(err, dashboard.ErrBadPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("failed to build analysis", "year", year, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to build analysis")
	}
}

// rejected: ошибки ввода кассира. Заказ не проведён, можно поправить и повторить.
func rejected(err error) bool {
	var (
		re *checkout.RequestError
		ve *order.ValidationError
	)
	return errors.As(err, &re) || errors.As(err, &ve) ||
		errors.Is(err, checkout.ErrEmptyDraft) ||
		errors.Is(err, checkout.ErrNegativeAmount) ||
		errors.Is(err, inventory.ErrNegativeStock)
}

// POST /checkout проводит заказ целиком (позиции, материалы, оплата).
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkout.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order payload")
		return
	}

	res, err := h.desk.Place(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, res)
	case errors.Is(err, customers.ErrNotFound):
		writeError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case rejected(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error("failed to place order", "customer_id", req.CustomerID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to place order")
	}
}
