package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
	"github.com/Spok95/print-cashier/internal/domain/rates"
	"github.com/Spok95/print-cashier/internal/infra/metrics"
	"github.com/Spok95/print-cashier/internal/store"
)

var ErrSessionClosed = errors.New("checkout: session is closed")

// Desk открывает сессии кассы.
type Desk struct {
	store     store.Store
	prices    *pricing.Provider
	finalizer *Finalizer
	log       *slog.Logger
}

func NewDesk(st store.Store, prices *pricing.Provider, finalizer *Finalizer, log *slog.Logger) *Desk {
	return &Desk{store: st, prices: prices, finalizer: finalizer, log: log}
}

// Open начинает заказ для существующего клиента.
func (d *Desk) Open(ctx context.Context, customerID int64) (*Session, error) {
	c, err := d.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.New(),
		Customer: *c,
		draft:    order.NewDraft(c.ID),
		desk:     d,
	}
	d.log.Debug("checkout session opened", "session_id", s.ID.String(), "customer_id", c.ID)
	return s, nil
}

// Session: один заказ у кассы. Черновик принадлежит только ей; не потокобезопасна.
type Session struct {
	ID       uuid.UUID
	Customer customers.Customer

	draft  *order.Draft
	desk   *Desk
	closed bool
}

func (s *Session) catalog() *pricing.Catalog { return s.desk.prices.Catalog() }

func countMiss(err error) error {
	if errors.Is(err, rates.ErrNoTier) {
		metrics.RateMisses.Inc()
	}
	return err
}

// StartSheets считает листовую печать и открывает для неё отделку.
func (s *Session) StartSheets(req pricing.SheetRequest) (order.Pending, error) {
	cat := s.catalog()
	item, err := cat.QuoteSheets(req)
	if err != nil {
		return order.Pending{}, err
	}
	return order.Start(cat, item), nil
}

// StartCoated: то же для мелованной бумаги и наклеек; warnings надо показать кассиру.
func (s *Session) StartCoated(req pricing.CoatedRequest) (order.Pending, []pricing.Warning, error) {
	cat := s.catalog()
	item, warns, err := cat.QuoteCoated(req)
	if err != nil {
		return order.Pending{}, nil, err
	}
	return order.Start(cat, item), warns, nil
}

func (s *Session) Commit(p order.Pending) ([]order.LineItem, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	lines, err := s.draft.Commit(p)
	if err != nil {
		return nil, countMiss(err)
	}
	for _, li := range lines {
		metrics.LineItems.WithLabelValues(string(li.Kind)).Inc()
	}
	return lines, nil
}

func (s *Session) AddIDCards(qty int) (order.LineItem, error) {
	if s.closed {
		return order.LineItem{}, ErrSessionClosed
	}
	li, err := s.draft.AddIDCards(s.catalog(), qty)
	if err != nil {
		return order.LineItem{}, countMiss(err)
	}
	metrics.LineItems.WithLabelValues(string(li.Kind)).Inc()
	return li, nil
}

// AddMaterial добавляет расход материала; уход остатка в минус требует confirmNegative.
func (s *Session) AddMaterial(ctx context.Context, inventoryID int64, qty float64, confirmNegative bool) error {
	if s.closed {
		return ErrSessionClosed
	}
	item, err := s.desk.store.GetInventoryItem(ctx, inventoryID)
	if err != nil {
		return err
	}
	return s.draft.AddMaterial(*item, qty, confirmNegative)
}

func (s *Session) Items() []order.LineItem             { return s.draft.Items() }
func (s *Session) Materials() []order.ConsumedMaterial { return s.draft.Materials() }
func (s *Session) Draft() *order.Draft                 { return s.draft }

// Finalize оформляет заказ. После успеха черновик очищается и сессия закрывается;
// при ошибке всё остаётся как было, можно повторить.
func (s *Session) Finalize(ctx context.Context, p Payment) (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	id, err := s.desk.finalizer.Finalize(ctx, s.draft, p)
	if err != nil {
		return 0, fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.draft.Reset()
	s.closed = true
	return id, nil
}

// Cancel выбрасывает черновик.
func (s *Session) Cancel() {
	s.draft.Reset()
	s.closed = true
	s.desk.log.Debug("checkout session cancelled", "session_id", s.ID.String())
}
