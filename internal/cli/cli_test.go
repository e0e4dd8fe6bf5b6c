package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/print-cashier/internal/domain/pricing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPricesExportImportAndMigrate(t *testing.T) {
	dir := t.TempDir()
	pricesPath := filepath.Join(dir, "prices.yaml")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
app:
  env: prod
storage:
  driver: sqlite
sqlite:
  path: %s
prices:
  path: %s
`, filepath.Join(dir, "cashier.db"), pricesPath)), 0o644))

	_, err := run(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "cashier.db"))

	sheet := filepath.Join(dir, "prices.xlsx")
	_, err = run(t, "prices", "export", "--config", cfgPath, "--out", sheet)
	require.NoError(t, err)
	assert.FileExists(t, pricesPath, "defaults are written on first load")

	out, err := run(t, "prices", "import", "--config", cfgPath, "--in", sheet)
	require.NoError(t, err)
	assert.Contains(t, out, "updated")

	cat, err := pricing.Load(pricesPath)
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultCatalog().CuttingMin, cat.CuttingMin)

	_, err = run(t, "prices", "reset", "--config", cfgPath)
	require.NoError(t, err)

	_, err = run(t, "prices", "import", "--config", cfgPath)
	assert.Error(t, err, "--in is required")
}
