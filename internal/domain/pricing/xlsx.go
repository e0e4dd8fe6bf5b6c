package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrBadSheet = errors.New("pricing: bad price sheet")

// cell: одна редактируемая цена снимка.
type cell struct {
	section string
	key     string
	value   float64
	set     func(float64)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sideCells(section, prefix string, sp SidePrices) []cell {
	var out []cell
	for _, s := range []Side{SideOne, SideTwo} {
		v, ok := sp[s]
		if !ok {
			continue
		}
		s := s
		out = append(out, cell{section, prefix + "/" + string(s), v, func(x float64) { sp[s] = x }})
	}
	return out
}

func flatCells(section string, m map[string]float64) []cell {
	var out []cell
	for _, k := range sortedKeys(m) {
		k := k
		out = append(out, cell{section, k, m[k], func(x float64) { m[k] = x }})
	}
	return out
}

// boundKey: ключ ступени в листе, верхняя граница или «∞».
func boundKey(max *float64) string {
	if max == nil {
		return "∞"
	}
	return "<=" + strconv.FormatFloat(*max, 'g', -1, 64)
}

// cells перечисляет цены снимка в стабильном порядке. Сеттеры пишут в сам c.
func (c *Catalog) cells() []cell {
	var out []cell
	for _, paper := range sortedKeys(c.Sheets.Ink) {
		for _, size := range sortedKeys(c.Sheets.Ink[paper]) {
			for _, b := range []Bracket{BracketSmall, BracketLarge} {
				if sp, ok := c.Sheets.Ink[paper][size][b]; ok {
					out = append(out, sideCells("ink", paper+"/"+size+"/"+string(b), sp)...)
				}
			}
		}
	}
	for _, paper := range sortedKeys(c.Sheets.Laser) {
		for _, size := range sortedKeys(c.Sheets.Laser[paper]) {
			out = append(out, sideCells("laser", paper+"/"+size, c.Sheets.Laser[paper][size])...)
		}
	}
	for _, stock := range sortedKeys(c.Coated.PerCopy) {
		out = append(out, sideCells("coated", stock, c.Coated.PerCopy[stock])...)
	}
	for i := range c.Coated.ShotRates {
		p := &c.Coated.ShotRates[i]
		out = append(out, cell{"shot_rates", strconv.Itoa(i), *p, func(x float64) { *p = x }})
	}
	out = append(out, flatCells("lamination", c.Lamination)...)
	out = append(out, flatCells("trimming", c.Trimming)...)
	out = append(out, flatCells("binding", c.Binding)...)
	out = append(out, cell{"cutting_min", "-", c.CuttingMin, func(x float64) { c.CuttingMin = x }})
	for i := range c.IDCards {
		t := &c.IDCards[i]
		out = append(out, cell{"id_cards", boundKey(t.Max), t.Rate, func(x float64) { t.Rate = x }})
	}
	for _, size := range sortedKeys(c.Stapling) {
		tbl := c.Stapling[size]
		for i := range tbl {
			t := &tbl[i]
			out = append(out, cell{"stapling_" + size, boundKey(t.Max), t.Rate, func(x float64) { t.Rate = x }})
		}
	}
	for i := range c.MenuLamination {
		tier := c.MenuLamination[i]
		bound := boundKey(tier.Max)
		for _, size := range sortedKeys(tier.Rates) {
			size := size
			out = append(out, cell{"menu_lamination", bound + "/" + size, tier.Rates[size], func(x float64) { tier.Rates[size] = x }})
		}
	}
	return out
}

var sheetHeader = []interface{}{"section", "key", "price"}

// ExportXLSX выгружает все цены снимка в книгу Excel: раздел, ключ, цена.
// Границы ступеней не редактируются через файл, только ставки.
func ExportXLSX(c *Catalog) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &sheetHeader); err != nil {
		return nil, fmt.Errorf("pricing: xlsx header: %w", err)
	}

	row := 2
	for _, cl := range c.cells() {
		excelRow := []interface{}{cl.section, cl.key, cl.value}
		addr, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("pricing: xlsx cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, addr, &excelRow); err != nil {
			return nil, fmt.Errorf("pricing: xlsx row %d: %w", row, err)
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("pricing: xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportXLSX применяет цены из книги к копии base и возвращает новый снимок
// и число изменённых цен. Пустая ячейка цены: значение не меняем.
func ImportXLSX(base *Catalog, data []byte) (*Catalog, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBadSheet, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBadSheet, err)
	}
	if len(rows) < 2 {
		return nil, 0, fmt.Errorf("%w: no price rows", ErrBadSheet)
	}

	next, err := base.Clone()
	if err != nil {
		return nil, 0, err
	}
	index := make(map[string]cell)
	for _, cl := range next.cells() {
		index[cl.section+"|"+cl.key] = cl
	}

	updated := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 3 {
			continue
		}
		section, key := strings.TrimSpace(row[0]), strings.TrimSpace(row[1])
		priceStr := strings.TrimSpace(row[2])
		if priceStr == "" {
			continue
		}
		cl, ok := index[section+"|"+key]
		if !ok {
			return nil, 0, fmt.Errorf("%w: row %d: unknown price %s/%s", ErrBadSheet, i+1, section, key)
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(priceStr, ",", "."), 64)
		if err != nil || price < 0 {
			return nil, 0, fmt.Errorf("%w: row %d: bad price %q", ErrBadSheet, i+1, priceStr)
		}
		if price != cl.value {
			cl.set(price)
			updated++
		}
	}

	if err := next.Validate(); err != nil {
		return nil, 0, err
	}
	return next, updated, nil
}
