package engine

import (
	"testing"

	"flow_go/internal/domain"
)

func premiumAlert(premium int64) domain.Alert {
	return domain.Alert{
		Symbol:           "AAPL240119C00150000",
		Underlying:       "AAPL",
		EstimatedPremium: premium,
	}
}

func TestAlertBook_SortedDescending(t *testing.T) {
	book := NewAlertBook(200)
	for _, p := range []int64{100, 500, 300, 900, 50} {
		book.Insert(premiumAlert(p))
	}

	alerts := book.Recent()
	for i := 1; i < len(alerts); i++ {
		if alerts[i].EstimatedPremium > alerts[i-1].EstimatedPremium {
			t.Fatalf("book not sorted descending at %d: %d > %d",
				i, alerts[i].EstimatedPremium, alerts[i-1].EstimatedPremium)
		}
	}
}

func TestAlertBook_CapacityEviction(t *testing.T) {
	book := NewAlertBook(200)
	for i := 0; i < 250; i++ {
		book.Insert(premiumAlert(int64(i)))
	}

	if book.Len() != 200 {
		t.Fatalf("expected exactly 200 retained, got %d", book.Len())
	}

	// Premiums 0..249 inserted: evicted are 0..49, retained minimum is 50.
	alerts := book.Recent()
	for _, a := range alerts {
		if a.EstimatedPremium < 50 {
			t.Fatalf("retained alert with premium %d below every evicted one", a.EstimatedPremium)
		}
	}
}

func TestAlertBook_RecentIsSnapshot(t *testing.T) {
	book := NewAlertBook(10)
	book.Insert(premiumAlert(100))

	snap := book.Recent()
	snap[0].EstimatedPremium = -1

	if book.Recent()[0].EstimatedPremium != 100 {
		t.Error("mutating a snapshot must not affect book internals")
	}
}

func TestAlertBook_Clear(t *testing.T) {
	book := NewAlertBook(10)
	book.Insert(premiumAlert(100))
	book.Clear()
	if book.Len() != 0 {
		t.Error("clear must empty the book")
	}
}
