package customers

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("customers: not found")
	ErrPhoneTaken = errors.New("customers: phone already registered")
)

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizePhone убирает пробелы и дефисы, чтобы уникальность не обходилась форматированием.
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}
