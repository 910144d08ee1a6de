package engine

import (
	"sort"

	"flow_go/internal/domain"
)

// AlertBook is the bounded, premium-ranked alert buffer. Always sorted
// descending by estimated premium; inserting past capacity evicts the tail.
// Not safe for concurrent use; the scanner serializes access and hands out
// snapshot copies.
type AlertBook struct {
	capacity int
	alerts   []domain.Alert
}

// NewAlertBook creates a book holding at most capacity alerts.
func NewAlertBook(capacity int) *AlertBook {
	return &AlertBook{
		capacity: capacity,
		alerts:   make([]domain.Alert, 0, capacity),
	}
}

// Insert adds an alert, restores descending premium order, and truncates to
// capacity (dropping the lowest-premium tail).
func (b *AlertBook) Insert(a domain.Alert) {
	b.alerts = append(b.alerts, a)
	sort.SliceStable(b.alerts, func(i, j int) bool {
		return b.alerts[i].EstimatedPremium > b.alerts[j].EstimatedPremium
	})
	if len(b.alerts) > b.capacity {
		b.alerts = b.alerts[:b.capacity]
	}
}

// Recent returns a snapshot copy of the current contents. Callers cannot
// mutate book internals through the returned slice.
func (b *AlertBook) Recent() []domain.Alert {
	out := make([]domain.Alert, len(b.alerts))
	copy(out, b.alerts)
	return out
}

// Len returns the current number of alerts held.
func (b *AlertBook) Len() int {
	return len(b.alerts)
}

// Clear empties the book (daily rollover). There is no removal by key.
func (b *AlertBook) Clear() {
	b.alerts = b.alerts[:0]
}
