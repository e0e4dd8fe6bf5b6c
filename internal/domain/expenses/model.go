package expenses

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalid = errors.New("expenses: description and positive amount required")

type Expense struct {
	ID          int64           `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}
