// Package service содержит административные операции вокруг кассы (клиенты, склад, расходы).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Spok95/print-cashier/internal/domain/customers"
	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/receipts"
	"github.com/Spok95/print-cashier/internal/store"
)

const searchLimit = 20

type Customers struct {
	store store.Repo
	log   *slog.Logger
}

func NewCustomers(st store.Repo, log *slog.Logger) *Customers {
	return &Customers{store: st, log: log}
}

// Create регистрирует клиента. Телефон уникален после нормализации.
func (s *Customers) Create(ctx context.Context, name, phone, notes string) (*customers.Customer, error) {
	name = strings.TrimSpace(name)
	phone = customers.NormalizePhone(phone)
	if name == "" {
		return nil, &order.ValidationError{Field: "name", Reason: "required"}
	}
	if phone == "" {
		return nil, &order.ValidationError{Field: "phone", Reason: "required"}
	}
	id, err := s.store.CreateCustomer(ctx, customers.Customer{Name: name, Phone: phone, Notes: strings.TrimSpace(notes)})
	if err != nil {
		return nil, err
	}
	s.log.Info("customer created", "customer_id", id)
	return s.store.GetCustomer(ctx, id)
}

func (s *Customers) Get(ctx context.Context, id int64) (*customers.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *Customers) FindByPhone(ctx context.Context, phone string) (*customers.Customer, error) {
	return s.store.GetCustomerByPhone(ctx, customers.NormalizePhone(phone))
}

// Search ищет по подстроке имени или телефона.
func (s *Customers) Search(ctx context.Context, q string) ([]customers.Customer, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	return s.store.SearchCustomers(ctx, q, searchLimit)
}

// History: чеки клиента, новые первыми.
func (s *Customers) History(ctx context.Context, customerID int64) ([]receipts.Receipt, error) {
	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	list, err := s.store.ListCustomerReceipts(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("service: history of %d: %w", customerID, err)
	}
	return list, nil
}
