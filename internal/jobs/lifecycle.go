package jobs

import (
	"errors"
	"fmt"
)

var (
	ErrNoStatuses    = errors.New("jobs: status list is empty")
	ErrUnknownStatus = errors.New("jobs: unknown status")
)

// Lifecycle: упорядоченные статусы заказа. Первый ставится при оформлении,
// последний: конечный.
type Lifecycle struct {
	labels []string
}

func NewLifecycle(labels []string) (Lifecycle, error) {
	if len(labels) == 0 {
		return Lifecycle{}, ErrNoStatuses
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			return Lifecycle{}, fmt.Errorf("jobs: empty status label")
		}
		if _, dup := seen[l]; dup {
			return Lifecycle{}, fmt.Errorf("jobs: duplicate status %q", l)
		}
		seen[l] = struct{}{}
	}
	return Lifecycle{labels: append([]string(nil), labels...)}, nil
}

func (l Lifecycle) First() string    { return l.labels[0] }
func (l Lifecycle) Terminal() string { return l.labels[len(l.labels)-1] }

// Index: позиция статуса или -1.
func (l Lifecycle) Index(status string) int {
	for i, s := range l.labels {
		if s == status {
			return i
		}
	}
	return -1
}

func (l Lifecycle) Contains(status string) bool { return l.Index(status) >= 0 }

func (l Lifecycle) Labels() []string { return append([]string(nil), l.labels...) }
