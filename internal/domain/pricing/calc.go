package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("pricing: quantity must be > 0")
	ErrUnknownPaper    = errors.New("pricing: unknown paper type")
	ErrUnknownSize     = errors.New("pricing: unknown size")
	ErrUnknownSide     = errors.New("pricing: unknown side")
	ErrUnknownMethod   = errors.New("pricing: unknown print method")
	ErrUnknownMode     = errors.New("pricing: unknown coated mode")
	ErrUnknownShotRate = errors.New("pricing: shot rate is not configured")
)

// Family: семейство продукта; от него зависят доступные виды отделки.
type Family string

const (
	FamilySheet  Family = "sheet"
	FamilyCoated Family = "coated"
)

// CoatedSize: формат мелованной печати.
const CoatedSize = "A3+"

// PendingItem: результат расчёта печати до выбора отделки.
type PendingItem struct {
	Family        Family
	Description   string
	PaperSize     string
	PrintingCost  decimal.Decimal
	ItemsToFinish int
	IsBookOrder   bool
	PapersPerBook int
	Sticker       bool
}

// Book: режим книг (листов в книге и число книг).
type Book struct {
	PapersPerBook int
	Count         int
}

type SheetRequest struct {
	PaperType string
	Size      string
	Method    Method
	Side      Side
	Sheets    int   // плоский тираж; игнорируется при Book != nil
	Book      *Book // режим книг
}

// QuoteSheets считает листовую печать (ризограф или лазер).
func (c *Catalog) QuoteSheets(r SheetRequest) (PendingItem, error) {
	if !r.Side.valid() {
		return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownSide, r.Side)
	}

	total, finish := r.Sheets, r.Sheets
	if r.Book != nil {
		if r.Book.PapersPerBook <= 0 || r.Book.Count <= 0 {
			return PendingItem{}, ErrInvalidQuantity
		}
		total, finish = r.Book.PapersPerBook*r.Book.Count, r.Book.Count
	}
	if total <= 0 {
		return PendingItem{}, ErrInvalidQuantity
	}

	var rate float64
	switch r.Method {
	case MethodInk:
		bySize, ok := c.Sheets.Ink[r.PaperType]
		if !ok {
			return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownPaper, r.PaperType)
		}
		brackets, ok := bySize[r.Size]
		if !ok {
			return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownSize, r.Size)
		}
		bracket := BracketSmall
		if total > c.Sheets.Threshold {
			bracket = BracketLarge
		}
		if rate, ok = brackets[bracket][r.Side]; !ok {
			return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownSide, r.Side)
		}
	case MethodLaser:
		bySize, ok := c.Sheets.Laser[r.PaperType]
		if !ok {
			return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownPaper, r.PaperType)
		}
		bySide, ok := bySize[r.Size]
		if !ok {
			return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownSize, r.Size)
		}
		if rate, ok = bySide[r.Side]; !ok {
			return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownSide, r.Side)
		}
	default:
		return PendingItem{}, fmt.Errorf("%w: %q", ErrUnknownMethod, r.Method)
	}

	item := PendingItem{
		Family:        FamilySheet,
		Description:   fmt.Sprintf("%s %s %s %s-sided", r.Method, r.PaperType, r.Size, r.Side),
		PaperSize:     r.Size,
		PrintingCost:  decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(int64(total))),
		ItemsToFinish: finish,
	}
	if r.Book != nil {
		item.IsBookOrder = true
		item.PapersPerBook = r.Book.PapersPerBook
	}
	return item, nil
}

type CoatedMode string

const (
	ModeCopies CoatedMode = "copies"
	ModeShots  CoatedMode = "shots"
)

type CoatedRequest struct {
	Stock    string
	Side     Side
	Mode     CoatedMode
	Copies   int     // ModeCopies
	Shots    int     // ModeShots
	ShotRate float64 // ModeShots; 0: первая настроенная ставка
}

// Warning: замечание расчёта, которое нужно показать кассиру.
type Warning string

const WarnStickerOneSided Warning = "stickers are printed one side only; side changed to one"

// QuoteCoated считает мелованную печать и наклейки поштучно или по проходам.
func (c *Catalog) QuoteCoated(r CoatedRequest) (PendingItem, []Warning, error) {
	prices, ok := c.Coated.PerCopy[r.Stock]
	if !ok {
		return PendingItem{}, nil, fmt.Errorf("%w: %q", ErrUnknownPaper, r.Stock)
	}
	if !r.Side.valid() {
		return PendingItem{}, nil, fmt.Errorf("%w: %q", ErrUnknownSide, r.Side)
	}

	var warns []Warning
	sticker := c.IsSticker(r.Stock)
	side := r.Side
	if sticker && side == SideTwo {
		side = SideOne
		warns = append(warns, WarnStickerOneSided)
	}

	item := PendingItem{
		Family:      FamilyCoated,
		Description: r.Stock,
		PaperSize:   CoatedSize,
		IsBookOrder: true,
		Sticker:     sticker,
	}

	switch r.Mode {
	case ModeCopies:
		if r.Copies <= 0 {
			return PendingItem{}, nil, ErrInvalidQuantity
		}
		rate, ok := prices[side]
		if !ok {
			rate = prices[SideOne]
		}
		item.PrintingCost = decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(int64(r.Copies)))
		item.ItemsToFinish = r.Copies
	case ModeShots:
		if r.Shots <= 0 {
			return PendingItem{}, nil, ErrInvalidQuantity
		}
		rate, err := c.shotRate(r.ShotRate)
		if err != nil {
			return PendingItem{}, nil, err
		}
		mult := int64(1)
		if side == SideTwo {
			mult = 2
		}
		item.PrintingCost = decimal.NewFromFloat(rate).
			Mul(decimal.NewFromInt(int64(r.Shots))).
			Mul(decimal.NewFromInt(mult))
		item.ItemsToFinish = r.Shots
		item.Description += " (shots)"
	default:
		return PendingItem{}, nil, fmt.Errorf("%w: %q", ErrUnknownMode, r.Mode)
	}
	return item, warns, nil
}

func (c *Catalog) shotRate(want float64) (float64, error) {
	if want == 0 {
		return c.Coated.ShotRates[0], nil
	}
	for _, r := range c.Coated.ShotRates {
		if r == want {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %g", ErrUnknownShotRate, want)
}

// IDCardQuote: готовая позиция пластиковых карт.
type IDCardQuote struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// QuoteIDCards берёт ставку за штуку из ступенчатой таблицы.
func (c *Catalog) QuoteIDCards(qty int) (IDCardQuote, error) {
	if qty <= 0 {
		return IDCardQuote{}, ErrInvalidQuantity
	}
	rate, err := c.IDCards.Rate(float64(qty))
	if err != nil {
		return IDCardQuote{}, fmt.Errorf("pricing: id cards: %w", err)
	}
	unit := decimal.NewFromFloat(rate)
	return IDCardQuote{
		Quantity:  qty,
		UnitPrice: unit,
		Total:     unit.Mul(decimal.NewFromInt(int64(qty))),
	}, nil
}
