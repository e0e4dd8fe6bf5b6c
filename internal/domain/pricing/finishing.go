package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrUnknownOption = errors.New("pricing: unknown option")

func option(tbl map[string]float64, name, key string) (decimal.Decimal, error) {
	if key == "" {
		key = OptionNone
	}
	v, ok := tbl[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s %q", ErrUnknownOption, name, key)
	}
	return decimal.NewFromFloat(v), nil
}

// LaminationPrice: цена ламинации за единицу; "" и "none" дают ноль.
func (c *Catalog) LaminationPrice(key string) (decimal.Decimal, error) {
	return option(c.Lamination, "lamination", key)
}

func (c *Catalog) TrimmingPrice(key string) (decimal.Decimal, error) {
	return option(c.Trimming, "trimming", key)
}

func (c *Catalog) BindingPrice(key string) (decimal.Decimal, error) {
	return option(c.Binding, "binding", key)
}

// StaplingRate: ставка скрепления за книгу по числу листов в ней.
func (c *Catalog) StaplingRate(size string, papersPerBook int) (decimal.Decimal, error) {
	tbl, ok := c.Stapling[size]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: stapling %q", ErrUnknownSize, size)
	}
	r, err := tbl.Rate(float64(papersPerBook))
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricing: stapling %s: %w", size, err)
	}
	return decimal.NewFromFloat(r), nil
}

// MenuLaminationRate: ставка горячей ламинации за штуку. Сначала ступень по тиражу, затем формат.
func (c *Catalog) MenuLaminationRate(size string, qty int) (decimal.Decimal, error) {
	r, err := c.MenuLamination.Rate(float64(qty), size)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricing: menu lamination: %w", err)
	}
	return decimal.NewFromFloat(r), nil
}
