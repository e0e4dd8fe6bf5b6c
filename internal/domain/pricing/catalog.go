package pricing

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Spok95/print-cashier/internal/domain/rates"
)

var ErrBadCatalog = errors.New("pricing: invalid catalog")

type Side string

const (
	SideOne Side = "one"
	SideTwo Side = "two"
)

func (s Side) valid() bool { return s == SideOne || s == SideTwo }

type Method string

const (
	MethodInk   Method = "ink"
	MethodLaser Method = "laser"
)

// Bracket: ценовая группа ризографа по объёму тиража.
type Bracket string

const (
	BracketSmall Bracket = "small"
	BracketLarge Bracket = "large"
)

// OptionNone: ключ «без опции» в таблицах ламинации, подрезки и переплёта.
const OptionNone = "none"

type SidePrices map[Side]float64

// SheetPrices: листовая печать.
// Ink: [бумага][формат][группа][сторона], Laser: [бумага][формат][сторона].
type SheetPrices struct {
	Threshold int                                         `yaml:"quantity_threshold"`
	Ink       map[string]map[string]map[Bracket]SidePrices `yaml:"ink"`
	Laser     map[string]map[string]SidePrices            `yaml:"laser"`
}

// CoatedPrices: мелованная бумага и наклейки, формат A3+.
type CoatedPrices struct {
	PerCopy   map[string]SidePrices `yaml:"per_copy"`
	Stickers  []string              `yaml:"stickers"`
	ShotRates []float64             `yaml:"shot_rates"`
}

// Catalog: неизменяемый снимок прайса. После передачи в Provider не мутируется.
type Catalog struct {
	Statuses       []string               `yaml:"statuses"`
	Sheets         SheetPrices            `yaml:"sheets"`
	Coated         CoatedPrices           `yaml:"coated"`
	Lamination     map[string]float64     `yaml:"lamination"`
	Trimming       map[string]float64     `yaml:"trimming"`
	Binding        map[string]float64     `yaml:"binding"`
	CuttingMin     float64                `yaml:"cutting_min"`
	IDCards        rates.Table            `yaml:"id_cards"`
	Stapling       map[string]rates.Table `yaml:"stapling"`
	MenuLamination rates.SizedTable       `yaml:"menu_lamination"`
}

// IsSticker сообщает, относится ли сорт к наклейкам (только односторонняя печать).
func (c *Catalog) IsSticker(stock string) bool {
	for _, s := range c.Coated.Stickers {
		if s == stock {
			return true
		}
	}
	return false
}

// Clone делает глубокую копию через YAML; используется перед правкой снимка.
func (c *Catalog) Clone() (*Catalog, error) {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("pricing: clone: %w", err)
	}
	var out Catalog
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("pricing: clone: %w", err)
	}
	return &out, nil
}

func (c *Catalog) normalize() {
	c.IDCards = c.IDCards.Normalize()
	for size, t := range c.Stapling {
		c.Stapling[size] = t.Normalize()
	}
	c.MenuLamination = c.MenuLamination.Normalize()
}

// Validate проверяет целостность снимка; некорректный прайс не устанавливается.
func (c *Catalog) Validate() error {
	if len(c.Statuses) == 0 {
		return fmt.Errorf("%w: empty status list", ErrBadCatalog)
	}
	seen := make(map[string]struct{}, len(c.Statuses))
	for _, s := range c.Statuses {
		if s == "" {
			return fmt.Errorf("%w: empty status label", ErrBadCatalog)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: duplicate status %q", ErrBadCatalog, s)
		}
		seen[s] = struct{}{}
	}
	if c.Sheets.Threshold <= 0 {
		return fmt.Errorf("%w: quantity threshold must be > 0", ErrBadCatalog)
	}
	if len(c.Sheets.Ink) == 0 && len(c.Sheets.Laser) == 0 {
		return fmt.Errorf("%w: no sheet prices", ErrBadCatalog)
	}
	if len(c.Coated.PerCopy) == 0 {
		return fmt.Errorf("%w: no coated prices", ErrBadCatalog)
	}
	for _, s := range c.Coated.Stickers {
		if _, ok := c.Coated.PerCopy[s]; !ok {
			return fmt.Errorf("%w: sticker %q has no price", ErrBadCatalog, s)
		}
	}
	if len(c.Coated.ShotRates) == 0 {
		return fmt.Errorf("%w: no shot rates", ErrBadCatalog)
	}
	for _, r := range c.Coated.ShotRates {
		if r <= 0 {
			return fmt.Errorf("%w: shot rate must be > 0", ErrBadCatalog)
		}
	}
	for name, tbl := range map[string]map[string]float64{
		"lamination": c.Lamination, "trimming": c.Trimming, "binding": c.Binding,
	} {
		for k, v := range tbl {
			if v < 0 {
				return fmt.Errorf("%w: %s %q is negative", ErrBadCatalog, name, k)
			}
		}
	}
	if c.CuttingMin < 0 {
		return fmt.Errorf("%w: cutting_min is negative", ErrBadCatalog)
	}
	if err := c.IDCards.Validate(); err != nil {
		return fmt.Errorf("%w: id_cards: %w", ErrBadCatalog, err)
	}
	for size, t := range c.Stapling {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: stapling %s: %w", ErrBadCatalog, size, err)
		}
	}
	if err := c.MenuLamination.Validate(); err != nil {
		return fmt.Errorf("%w: menu_lamination: %w", ErrBadCatalog, err)
	}
	return nil
}

// fillMissing дополняет отсутствующие разделы значениями из def.
func (c *Catalog) fillMissing(def *Catalog) {
	if len(c.Statuses) == 0 {
		c.Statuses = def.Statuses
	}
	if c.Sheets.Threshold == 0 {
		c.Sheets.Threshold = def.Sheets.Threshold
	}
	if c.Sheets.Ink == nil {
		c.Sheets.Ink = def.Sheets.Ink
	}
	if c.Sheets.Laser == nil {
		c.Sheets.Laser = def.Sheets.Laser
	}
	if c.Coated.PerCopy == nil {
		c.Coated.PerCopy = def.Coated.PerCopy
	}
	if c.Coated.Stickers == nil {
		c.Coated.Stickers = def.Coated.Stickers
	}
	if c.Coated.ShotRates == nil {
		c.Coated.ShotRates = def.Coated.ShotRates
	}
	if c.Lamination == nil {
		c.Lamination = def.Lamination
	}
	if c.Trimming == nil {
		c.Trimming = def.Trimming
	}
	if c.Binding == nil {
		c.Binding = def.Binding
	}
	if c.CuttingMin == 0 {
		c.CuttingMin = def.CuttingMin
	}
	if c.IDCards == nil {
		c.IDCards = def.IDCards
	}
	if c.Stapling == nil {
		c.Stapling = def.Stapling
	}
	if c.MenuLamination == nil {
		c.MenuLamination = def.MenuLamination
	}
}
