package engine

// VolumeLedger tracks same-day cumulative traded size per contract.
// Values only grow within a trading day; the scanner clears the whole map
// on daily rollover. Not safe for concurrent use; owned by the scanner
// goroutine.
type VolumeLedger struct {
	contracts map[string]int64
}

// NewVolumeLedger creates an empty ledger.
func NewVolumeLedger() *VolumeLedger {
	return &VolumeLedger{contracts: make(map[string]int64)}
}

// Add accumulates size for symbol and returns the new cumulative total.
func (l *VolumeLedger) Add(symbol string, size int64) int64 {
	total := l.contracts[symbol] + size
	l.contracts[symbol] = total
	return total
}

// Volume returns the cumulative size for symbol (0 if unseen today).
func (l *VolumeLedger) Volume(symbol string) int64 {
	return l.contracts[symbol]
}

// Len returns the number of contracts seen today.
func (l *VolumeLedger) Len() int {
	return len(l.contracts)
}

// Reset clears all cumulative totals (daily rollover).
func (l *VolumeLedger) Reset() {
	l.contracts = make(map[string]int64)
}
