package engine

import (
	"time"
)

type venueStamp struct {
	exchange string
	at       time.Time
}

// SweepTracker decides, per contract, whether a trade is part of a
// cross-venue sweep: the same contract printing on minVenues+ distinct
// exchanges inside the window.
//
// Entries older than the window are pruned before every evaluation, so
// per-contract memory is bounded by arrival rate within the window, not by
// total daily volume. Not safe for concurrent use; owned by the scanner
// goroutine.
type SweepTracker struct {
	window    time.Duration
	minVenues int
	contracts map[string][]venueStamp
}

// NewSweepTracker creates a tracker with the given window and distinct-venue
// threshold.
func NewSweepTracker(window time.Duration, minVenues int) *SweepTracker {
	return &SweepTracker{
		window:    window,
		minVenues: minVenues,
		contracts: make(map[string][]venueStamp),
	}
}

// Observe records one (exchange, arrival) observation for symbol and reports
// whether the contract is currently sweeping. Evaluated fresh on every trade;
// a contract can flip in and out of sweep status tick to tick.
func (t *SweepTracker) Observe(symbol, exchange string, now time.Time) bool {
	entries := t.contracts[symbol]

	cutoff := now.Add(-t.window)
	keep := entries[:0]
	for _, e := range entries {
		if e.at.After(cutoff) {
			keep = append(keep, e)
		}
	}

	keep = append(keep, venueStamp{exchange: exchange, at: now})
	t.contracts[symbol] = keep

	distinct := make(map[string]struct{}, len(keep))
	for _, e := range keep {
		distinct[e.exchange] = struct{}{}
	}
	return len(distinct) >= t.minVenues
}

// Reset drops all tracked state (daily rollover).
func (t *SweepTracker) Reset() {
	t.contracts = make(map[string][]venueStamp)
}
