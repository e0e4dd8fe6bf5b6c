package pricing

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// editSheet меняет цену в строке section/key выгрузки.
func editSheet(t *testing.T, data []byte, section, key, price string) []byte {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)

	found := false
	for i, row := range rows {
		if len(row) >= 2 && row[0] == section && row[1] == key {
			addr, err := excelize.CoordinatesToCellName(3, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellStr(sheet, addr, price))
			found = true
		}
	}
	require.True(t, found, "row %s/%s not found", section, key)

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}

func appendRow(t *testing.T, data []byte, section, key, price string) []byte {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)

	addr, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	require.NoError(t, err)
	row := []interface{}{section, key, price}
	require.NoError(t, f.SetSheetRow(sheet, addr, &row))

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	return buf.Bytes()
}
