package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Spok95/print-cashier/internal/domain/pricing"
)

// Addons: ламинация и подрезка; пустая строка означает «нет».
type Addons struct {
	Lamination string
	Trimming   string
}

// MenuLamination: горячая ламинация меню (тираж и формат).
type MenuLamination struct {
	Quantity int
	Size     string
}

// Finishing: отделка. Cutting; ручная цена резки за весь заказ (0; без резки).
type Finishing struct {
	Cutting        decimal.Decimal
	Binding        string
	StaplingSize   string          // "" значит без скрепления
	MenuLamination *MenuLamination // только для мелованной печати
}

// Pending: рассчитанная печать в ожидании отделки. Значение неизменяемое:
// WithAddons/WithFinishing возвращают новую копию.
type Pending struct {
	cat       *pricing.Catalog
	item      pricing.PendingItem
	addons    Addons
	finishing Finishing
}

// Start открывает отделку для рассчитанной печати. Резка заполняется
// минимальной ценой из прайса.
func Start(cat *pricing.Catalog, item pricing.PendingItem) Pending {
	return Pending{
		cat:       cat,
		item:      item,
		finishing: Finishing{Cutting: decimal.NewFromFloat(cat.CuttingMin)},
	}
}

func (p Pending) Item() pricing.PendingItem { return p.item }
func (p Pending) Addons() Addons            { return p.addons }
func (p Pending) Finishing() Finishing      { return p.finishing }

func (p Pending) WithAddons(a Addons) (Pending, error) {
	if _, err := p.cat.LaminationPrice(a.Lamination); err != nil {
		return p, &ValidationError{Field: "lamination", Reason: err.Error()}
	}
	if _, err := p.cat.TrimmingPrice(a.Trimming); err != nil {
		return p, &ValidationError{Field: "trimming", Reason: err.Error()}
	}
	p.addons = a
	return p, nil
}

func (p Pending) WithFinishing(f Finishing) (Pending, error) {
	if f.Cutting.IsNegative() {
		return p, &ValidationError{Field: "cutting", Reason: "must be >= 0"}
	}
	if _, err := p.cat.BindingPrice(f.Binding); err != nil {
		return p, &ValidationError{Field: "binding", Reason: err.Error()}
	}
	if f.StaplingSize != "" {
		if !p.staplingAllowed() {
			return p, &ValidationError{Field: "stapling", Reason: "only for book orders that are not stickers"}
		}
		if _, err := p.cat.StaplingRate(f.StaplingSize, p.item.PapersPerBook); err != nil {
			return p, &ValidationError{Field: "stapling", Reason: err.Error()}
		}
	}
	if m := f.MenuLamination; m != nil {
		if p.item.Family != pricing.FamilyCoated {
			return p, &ValidationError{Field: "menu_lamination", Reason: "only for coated prints"}
		}
		if m.Quantity <= 0 {
			return p, &ValidationError{Field: "menu_lamination", Reason: "quantity must be > 0"}
		}
		if _, err := p.cat.MenuLaminationRate(m.Size, m.Quantity); err != nil {
			return p, &ValidationError{Field: "menu_lamination", Reason: err.Error()}
		}
	}
	p.finishing = f
	return p, nil
}

// chosen: опция выбрана, даже если её цена в прайсе 0.
func chosen(option string) bool { return option != "" && option != pricing.OptionNone }

func (p Pending) staplingAllowed() bool {
	return p.item.IsBookOrder && !p.item.Sticker && p.item.PapersPerBook > 0
}

// Lines раскладывает печать и отделку на строки чека в фиксированном порядке:
// печать, ламинация, подрезка, резка, переплёт, скрепление, ламинация меню.
func (p Pending) Lines() ([]LineItem, error) {
	it := p.item
	n := it.ItemsToFinish

	printing, err := printingLine(it.Description, n, it.PrintingCost)
	if err != nil {
		return nil, err
	}
	lines := []LineItem{printing}

	perBook := 1
	if it.IsBookOrder {
		perBook = n
	}
	add := func(kind Kind, desc string, qty int, unit decimal.Decimal) error {
		li, err := NewLine(kind, desc, qty, unit)
		if err != nil {
			return err
		}
		lines = append(lines, li)
		return nil
	}

	lam, err := p.cat.LaminationPrice(p.addons.Lamination)
	if err != nil {
		return nil, err
	}
	if chosen(p.addons.Lamination) {
		if err := add(KindLamination, "Lamination "+p.addons.Lamination, perBook, lam); err != nil {
			return nil, err
		}
	}

	trim, err := p.cat.TrimmingPrice(p.addons.Trimming)
	if err != nil {
		return nil, err
	}
	if chosen(p.addons.Trimming) {
		if err := add(KindTrimming, "Trimming "+p.addons.Trimming, perBook, trim); err != nil {
			return nil, err
		}
	}

	f := p.finishing
	if f.Cutting.IsPositive() {
		if err := add(KindCutting, "Cutting", 1, f.Cutting); err != nil {
			return nil, err
		}
	}

	bind, err := p.cat.BindingPrice(f.Binding)
	if err != nil {
		return nil, err
	}
	if chosen(f.Binding) {
		if err := add(KindBinding, "Binding "+f.Binding, perBook, bind); err != nil {
			return nil, err
		}
	}

	if f.StaplingSize != "" && p.staplingAllowed() {
		rate, err := p.cat.StaplingRate(f.StaplingSize, it.PapersPerBook)
		if err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Stapling %s (%d sheets per book)", f.StaplingSize, it.PapersPerBook)
		if err := add(KindStapling, desc, n, rate); err != nil {
			return nil, err
		}
	}

	if m := f.MenuLamination; m != nil && it.Family == pricing.FamilyCoated {
		rate, err := p.cat.MenuLaminationRate(m.Size, m.Quantity)
		if err != nil {
			return nil, err
		}
		if rate.IsPositive() {
			if err := add(KindMenuLamination, "Menu lamination "+m.Size, m.Quantity, rate); err != nil {
				return nil, err
			}
		}
	}
	return lines, nil
}
