package event

import "sync"

// Pooling keeps the feed hotpath allocation-free at high tick rates.
// Gateway workers Acquire, the engine Releases after processing.

var tradePool = sync.Pool{
	New: func() any { return new(OptionTradeEvent) },
}

// AcquireOptionTradeEvent returns a zeroed event from the pool.
func AcquireOptionTradeEvent() *OptionTradeEvent {
	ev := tradePool.Get().(*OptionTradeEvent)
	*ev = OptionTradeEvent{}
	return ev
}

// ReleaseOptionTradeEvent returns an event to the pool. The caller must not
// touch it afterwards.
func ReleaseOptionTradeEvent(ev *OptionTradeEvent) {
	tradePool.Put(ev)
}

// Warmup pre-populates the pool so the first burst of ticks doesn't pay
// allocation cost.
func Warmup() {
	events := make([]*OptionTradeEvent, 0, 256)
	for i := 0; i < 256; i++ {
		events = append(events, AcquireOptionTradeEvent())
	}
	for _, ev := range events {
		ReleaseOptionTradeEvent(ev)
	}
}
