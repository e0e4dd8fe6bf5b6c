package pricing

import "github.com/Spok95/print-cashier/internal/domain/rates"

func ptr(v float64) *float64 { return &v }

func sides(one, two float64) SidePrices { return SidePrices{SideOne: one, SideTwo: two} }

func ink(a4s1, a4s2, a4l1, a4l2, a3s1, a3s2, a3l1, a3l2 float64) map[string]map[Bracket]SidePrices {
	return map[string]map[Bracket]SidePrices{
		"A4": {BracketSmall: sides(a4s1, a4s2), BracketLarge: sides(a4l1, a4l2)},
		"A3": {BracketSmall: sides(a3s1, a3s2), BracketLarge: sides(a3l1, a3l2)},
	}
}

// DefaultCatalog: заводской прайс; пишется на диск, если файла цен нет.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Statuses: []string{
			"Received", "In design", "Ready to print", "Printing",
			"Finishing", "Ready for pickup", "Delivered",
		},
		Sheets: SheetPrices{
			Threshold: 1000,
			Ink: map[string]map[string]map[Bracket]SidePrices{
				"paper_70":  ink(0.45, 0.65, 0.30, 0.40, 0.85, 1.25, 0.70, 0.95),
				"paper_80":  ink(0.50, 0.70, 0.40, 0.60, 1.00, 1.50, 0.80, 1.10),
				"paper_100": ink(0.55, 0.75, 0.50, 0.65, 1.20, 1.70, 1.00, 1.30),
			},
			Laser: map[string]map[string]SidePrices{
				"paper_70":  {"A4": sides(0.95, 1.70), "A3": sides(1.95, 3.45)},
				"paper_80":  {"A4": sides(1.00, 1.75), "A3": sides(2.00, 3.50)},
				"paper_100": {"A4": sides(1.10, 1.85), "A3": sides(2.20, 3.70)},
			},
		},
		Coated: CoatedPrices{
			PerCopy: map[string]SidePrices{
				"coated_115":      sides(4.00, 7.00),
				"coated_130":      sides(4.25, 7.25),
				"coated_150":      sides(4.50, 7.50),
				"coated_170":      sides(4.75, 7.75),
				"coated_200":      sides(5.00, 8.00),
				"coated_250":      sides(5.50, 8.50),
				"coated_300":      sides(5.75, 8.75),
				"coated_350":      sides(6.50, 9.50),
				"sticker_paper":   {SideOne: 8.00},
				"sticker_plastic": {SideOne: 14.00},
			},
			Stickers:  []string{"sticker_paper", "sticker_plastic"},
			ShotRates: []float64{2.5, 3.0},
		},
		Lamination: map[string]float64{OptionNone: 0, "one_side": 1, "two_sides": 2},
		Trimming:   map[string]float64{OptionNone: 0, "trim_5": 5, "trim_7": 7, "trim_10": 10},
		Binding: map[string]float64{
			OptionNone: 0,
			"manual_5":  5, "manual_7": 7, "manual_10": 10,
			"staple_3": 3, "staple_5": 5, "staple_7": 7,
			"wire_3": 3, "wire_5": 5, "wire_7": 7, "wire_10": 10,
			"hardcover_A5": 25, "hardcover_A4": 40, "hardcover_A3": 75,
		},
		CuttingMin: 15,
		IDCards: rates.Table{
			rates.Upto(10, 20.00), rates.Upto(50, 10.00), rates.Upto(100, 7.00),
			rates.Upto(300, 6.00), rates.Upto(500, 5.00), rates.Upto(1000, 4.00),
			rates.Above(3.50),
		},
		Stapling: map[string]rates.Table{
			"A5": {
				rates.Upto(100, 1.5), rates.Upto(150, 2), rates.Upto(200, 2.5),
				rates.Upto(300, 3), rates.Upto(400, 4), rates.Upto(500, 5),
				rates.Upto(600, 6), rates.Upto(700, 7), rates.Above(8),
			},
			"A4": {
				rates.Upto(100, 2), rates.Upto(150, 2.5), rates.Upto(200, 3),
				rates.Upto(300, 4), rates.Upto(400, 5), rates.Upto(500, 6),
				rates.Upto(600, 7), rates.Upto(700, 8), rates.Above(9),
			},
		},
		MenuLamination: rates.SizedTable{
			{Max: ptr(10), Rates: map[string]float64{"A5": 10, "A4": 15, "A3": 30}},
			{Max: ptr(100), Rates: map[string]float64{"A5": 7, "A4": 10, "A3": 20}},
			{Max: ptr(500), Rates: map[string]float64{"A5": 5, "A4": 8, "A3": 15}},
			{Rates: map[string]float64{"A5": 4, "A4": 6, "A3": 10}},
		},
	}
}
