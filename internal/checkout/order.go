package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/order"
	"github.com/Spok95/print-cashier/internal/domain/pricing"
)

// FinishingRequest: отделка одной позиции. Cutting nil; минимальная резка из прайса.
type FinishingRequest struct {
	Lamination     string                `json:"lamination"`
	Trimming       string                `json:"trimming"`
	Cutting        *decimal.Decimal      `json:"cutting"`
	Binding        string                `json:"binding"`
	StaplingSize   string                `json:"stapling_size"`
	MenuLamination *order.MenuLamination `json:"menu_lamination"`
}

type SheetJob struct {
	PaperType     string            `json:"paper_type"`
	Size          string            `json:"size"`
	Method        pricing.Method    `json:"method"`
	Side          pricing.Side      `json:"side"`
	Sheets        int               `json:"sheets"`
	PapersPerBook int               `json:"papers_per_book"` // > 0: режим книг
	Books         int               `json:"books"`
	Finishing     *FinishingRequest `json:"finishing"`
}

type CoatedJob struct {
	Stock     string             `json:"stock"`
	Side      pricing.Side       `json:"side"`
	Mode      pricing.CoatedMode `json:"mode"`
	Copies    int                `json:"copies"`
	Shots     int                `json:"shots"`
	ShotRate  float64            `json:"shot_rate"`
	Finishing *FinishingRequest  `json:"finishing"`
}

type MaterialUse struct {
	InventoryID     int64   `json:"inventory_id"`
	Quantity        float64 `json:"quantity"`
	ConfirmNegative bool    `json:"confirm_negative"`
}

// OrderRequest: заказ целиком, как его собирает внешний клиент кассы.
type OrderRequest struct {
	CustomerID int64           `json:"customer_id"`
	Sheets     []SheetJob      `json:"sheets"`
	Coated     []CoatedJob     `json:"coated"`
	IDCards    int             `json:"id_cards"`
	Materials  []MaterialUse   `json:"materials"`
	Discount   decimal.Decimal `json:"discount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	DueDate    string          `json:"due_date"` // YYYY-MM-DD, пусто: сегодня
	Notes      string          `json:"notes"`
}

type OrderResult struct {
	ReceiptID int64             `json:"receipt_id"`
	Items     []order.LineItem  `json:"items"`
	Warnings  []pricing.Warning `json:"warnings,omitempty"`
}

// RequestError: ошибка в конкретной позиции заказа.
type RequestError struct {
	Where string
	Err   error
}

func (e *RequestError) Error() string { return fmt.Sprintf("checkout: %s: %v", e.Where, e.Err) }
func (e *RequestError) Unwrap() error { return e.Err }

func finish(p order.Pending, f *FinishingRequest) (order.Pending, error) {
	if f == nil {
		return p, nil
	}
	p, err := p.WithAddons(order.Addons{Lamination: f.Lamination, Trimming: f.Trimming})
	if err != nil {
		return p, err
	}
	fin := p.Finishing()
	if f.Cutting != nil {
		fin.Cutting = *f.Cutting
	}
	fin.Binding = f.Binding
	fin.StaplingSize = f.StaplingSize
	fin.MenuLamination = f.MenuLamination
	return p.WithFinishing(fin)
}

// Place проводит заказ одной сессией: расчёт позиций, материалы, оформление.
// Любая ошибка отменяет сессию, в базе ничего не остаётся.
func (d *Desk) Place(ctx context.Context, req OrderRequest) (OrderResult, error) {
	s, err := d.Open(ctx, req.CustomerID)
	if err != nil {
		return OrderResult{}, err
	}
	res, err := s.place(ctx, req)
	if err != nil {
		s.Cancel()
		return OrderResult{}, err
	}
	return res, nil
}

func (s *Session) place(ctx context.Context, req OrderRequest) (OrderResult, error) {
	var res OrderResult

	for i, j := range req.Sheets {
		where := fmt.Sprintf("sheets[%d]", i)
		sr := pricing.SheetRequest{PaperType: j.PaperType, Size: j.Size, Method: j.Method, Side: j.Side, Sheets: j.Sheets}
		if j.PapersPerBook > 0 {
			sr.Book = &pricing.Book{PapersPerBook: j.PapersPerBook, Count: j.Books}
		}
		p, err := s.StartSheets(sr)
		if err == nil {
			p, err = finish(p, j.Finishing)
		}
		if err == nil {
			_, err = s.Commit(p)
		}
		if err != nil {
			return res, &RequestError{Where: where, Err: err}
		}
	}

	for i, j := range req.Coated {
		where := fmt.Sprintf("coated[%d]", i)
		p, warns, err := s.StartCoated(pricing.CoatedRequest{
			Stock: j.Stock, Side: j.Side, Mode: j.Mode, Copies: j.Copies, Shots: j.Shots, ShotRate: j.ShotRate,
		})
		if err == nil {
			p, err = finish(p, j.Finishing)
		}
		if err == nil {
			_, err = s.Commit(p)
		}
		if err != nil {
			return res, &RequestError{Where: where, Err: err}
		}
		res.Warnings = append(res.Warnings, warns...)
	}

	if req.IDCards > 0 {
		if _, err := s.AddIDCards(req.IDCards); err != nil {
			return res, &RequestError{Where: "id_cards", Err: err}
		}
	}

	for i, m := range req.Materials {
		if err := s.AddMaterial(ctx, m.InventoryID, m.Quantity, m.ConfirmNegative); err != nil {
			return res, &RequestError{Where: fmt.Sprintf("materials[%d]", i), Err: err}
		}
	}

	pay := Payment{Discount: req.Discount, AmountPaid: req.AmountPaid, Notes: req.Notes}
	if req.DueDate != "" {
		due, err := time.ParseInLocation("2006-01-02", req.DueDate, time.Local)
		if err != nil {
			return res, &RequestError{Where: "due_date", Err: errors.New("expected YYYY-MM-DD")}
		}
		pay.DueDate = due
	}

	res.Items = s.Items()
	id, err := s.Finalize(ctx, pay)
	if err != nil {
		return OrderResult{}, err
	}
	res.ReceiptID = id
	return res, nil
}
