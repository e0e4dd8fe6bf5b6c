package pricing

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load читает прайс из YAML. Если файла нет: записывает и возвращает заводской.
// Отсутствующие разделы дополняются значениями по умолчанию.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c := DefaultCatalog()
		if err := Save(path, c); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pricing: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse разбирает YAML-документ прайса.
func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("pricing: parse: %w", err)
	}
	c.fillMissing(DefaultCatalog())
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save пишет прайс атомарно: во временный файл, затем rename.
func Save(path string, c *Catalog) error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("pricing: marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pricing: mkdir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("pricing: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("pricing: rename: %w", err)
	}
	return nil
}
