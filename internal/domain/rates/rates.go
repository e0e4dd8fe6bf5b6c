package rates

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoTier       = errors.New("rates: no tier covers quantity")
	ErrNonPositive  = errors.New("rates: quantity must be > 0")
	ErrBadTable     = errors.New("rates: malformed table")
	ErrUnknownSize  = errors.New("rates: unknown size")
	ErrEmptyTable   = errors.New("rates: empty table")
	ErrUnboundedEnd = errors.New("rates: last tier must have no upper bound")
)

// Unbounded: граница >= этого числа трактуется как «без верхней границы»
// (старые файлы цен хранят бесконечность как 999999).
const Unbounded = 999999

// Tier: ступень тарифа. Ставка действует для количества до Max включительно.
// Max == nil: ступень без верхней границы.
type Tier struct {
	Max  *float64 `yaml:"max,omitempty"`
	Rate float64  `yaml:"rate"`
}

// Upto возвращает ступень с верхней границей max.
func Upto(max, rate float64) Tier { return Tier{Max: &max, Rate: rate} }

// Above возвращает последнюю, открытую ступень.
func Above(rate float64) Tier { return Tier{Rate: rate} }

func (t Tier) covers(q float64) bool { return t.Max == nil || q <= *t.Max }

func (t Tier) String() string {
	rng := "∞"
	if t.Max != nil {
		rng = fmt.Sprintf("%g", *t.Max)
	}
	return fmt.Sprintf("[..%s] %.2f", rng, t.Rate)
}

// Table: ступени по возрастанию верхней границы.
type Table []Tier

// Rate возвращает ставку первой ступени, чья граница >= q.
func (t Table) Rate(q float64) (float64, error) {
	if q <= 0 {
		return 0, ErrNonPositive
	}
	for _, tier := range t {
		if tier.covers(q) {
			return tier.Rate, nil
		}
	}
	return 0, fmt.Errorf("%w: %g", ErrNoTier, q)
}

// Resolve: ставка для q; 0 для q <= 0 и для количества вне всех ступеней.
// Ноль при промахе неотличим от бесплатной позиции, поэтому расчёты цен
// пользуются Rate и считают промах ошибкой конфигурации.
func Resolve(t Table, q float64) float64 {
	r, err := t.Rate(q)
	if err != nil {
		return 0
	}
	return r
}

// Normalize заменяет границы >= Unbounded на открытую.
func (t Table) Normalize() Table {
	out := make(Table, len(t))
	for i, tier := range t {
		out[i] = tier
		if tier.Max != nil && *tier.Max >= Unbounded {
			out[i].Max = nil
		}
	}
	return out
}

// Validate проверяет, что границы строго растут и последняя ступень открыта.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	prev := math.Inf(-1)
	for i, tier := range t {
		if tier.Rate < 0 || math.IsNaN(tier.Rate) {
			return fmt.Errorf("%w: tier %d has negative rate", ErrBadTable, i)
		}
		if tier.Max == nil {
			if i != len(t)-1 {
				return fmt.Errorf("%w: open tier %d is not last", ErrBadTable, i)
			}
			continue
		}
		if *tier.Max <= prev {
			return fmt.Errorf("%w: bound %g after %g", ErrBadTable, *tier.Max, prev)
		}
		prev = *tier.Max
	}
	if t[len(t)-1].Max != nil {
		return ErrUnboundedEnd
	}
	return nil
}

// SizedTier: ступень, где ставка дополнительно зависит от формата.
type SizedTier struct {
	Max   *float64           `yaml:"max,omitempty"`
	Rates map[string]float64 `yaml:"rates"`
}

// SizedTable: ступени по количеству, внутри каждой; ставки по формату.
type SizedTable []SizedTier

// Rate выбирает ступень по q тем же правилом, что и Table, затем ставку по size.
func (t SizedTable) Rate(q float64, size string) (float64, error) {
	if q <= 0 {
		return 0, ErrNonPositive
	}
	for _, tier := range t {
		if tier.Max != nil && q > *tier.Max {
			continue
		}
		r, ok := tier.Rates[size]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownSize, size)
		}
		return r, nil
	}
	return 0, fmt.Errorf("%w: %g", ErrNoTier, q)
}

// Sizes: форматы первой ступени.
func (t SizedTable) Sizes() []string {
	if len(t) == 0 {
		return nil
	}
	out := make([]string, 0, len(t[0].Rates))
	for s := range t[0].Rates {
		out = append(out, s)
	}
	return out
}

func (t SizedTable) Normalize() SizedTable {
	out := make(SizedTable, len(t))
	for i, tier := range t {
		out[i] = tier
		if tier.Max != nil && *tier.Max >= Unbounded {
			out[i].Max = nil
		}
	}
	return out
}

func (t SizedTable) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	flat := make(Table, len(t))
	for i, tier := range t {
		if len(tier.Rates) == 0 {
			return fmt.Errorf("%w: tier %d has no sizes", ErrBadTable, i)
		}
		for size, r := range tier.Rates {
			if r < 0 {
				return fmt.Errorf("%w: tier %d size %s has negative rate", ErrBadTable, i, size)
			}
		}
		flat[i] = Tier{Max: tier.Max}
	}
	return flat.Validate()
}
