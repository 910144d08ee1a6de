package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"flow_go/internal/domain"
	"flow_go/internal/event"
	"flow_go/internal/infra"
	"flow_go/internal/storage"
	"flow_go/pkg/quant"
)

const epochLayout = "2006-01-02"

// ScannerConfig bundles the scanner's fixed parameters.
type ScannerConfig struct {
	InboxSize   int
	MaxAlerts   int
	SweepWindow time.Duration
	SweepVenues int
	Thresholds  Thresholds
	Underlyings []string
}

// Scanner is the core single-threaded tick processor. All mutable state
// (ledger, sweep windows, alert book, daily epoch) is owned by the Run
// goroutine; ticks are funneled through the inbox and processed one at a
// time, so no two ticks ever observe state concurrently. External reads go
// through the mutex and return snapshot copies.
type Scanner struct {
	inbox      chan event.Event
	classifier *Classifier
	sweeps     *SweepTracker
	ledger     *VolumeLedger
	book       *AlertBook
	epoch      string // date (UTC) of the last daily reset

	// Optional raw-tick capture. Journal faults trip the breaker and are
	// skipped; capture is best-effort and must never stall the hotpath.
	journal *storage.TickJournal
	breaker *infra.CircuitBreaker

	// Alert push delivery: hotpath enqueues, dispatcher goroutine invokes
	// subscribers. A full queue drops rather than blocks.
	alertCh chan domain.Alert
	subMu   sync.Mutex
	subs    []func(domain.Alert)

	mu sync.RWMutex // held during mutation; external reads take RLock
}

// NewScanner creates a scanner instance. journal may be nil to disable
// capture.
func NewScanner(cfg ScannerConfig, journal *storage.TickJournal) *Scanner {
	return &Scanner{
		inbox:      make(chan event.Event, cfg.InboxSize),
		classifier: NewClassifier(cfg.Thresholds, cfg.Underlyings),
		sweeps:     NewSweepTracker(cfg.SweepWindow, cfg.SweepVenues),
		ledger:     NewVolumeLedger(),
		book:       NewAlertBook(cfg.MaxAlerts),
		journal:    journal,
		breaker:    infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("tick-journal")),
		alertCh:    make(chan domain.Alert, 256),
	}
}

// Inbox returns the event channel. Gateway workers send events here.
func (s *Scanner) Inbox() chan<- event.Event {
	return s.inbox
}

// OnAlert registers a push subscriber invoked once per newly inserted alert.
// Delivery runs on the dispatcher goroutine, never on the hotpath.
func (s *Scanner) OnAlert(fn func(domain.Alert)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

// Run starts the main loop. MUST be run in a single goroutine.
func (s *Scanner) Run(ctx context.Context) {
	slog.Info("Scanner started (single-thread hotpath)")

	go s.dispatchAlerts(ctx)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Scanner stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ev)
		}
	}
}

func (s *Scanner) processEvent(ev event.Event) {
	switch e := ev.(type) {
	case *event.OptionTradeEvent:
		s.captureTick(e)
		s.processTrade(e, time.Now())
		event.ReleaseOptionTradeEvent(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
}

// captureTick appends the raw event to the journal behind the breaker.
func (s *Scanner) captureTick(ev *event.OptionTradeEvent) {
	if s.journal == nil || !s.breaker.Allow() {
		return
	}
	if err := s.journal.SaveEvent(context.Background(), ev); err != nil {
		s.breaker.RecordFailure()
		slog.Warn("Journal write failed", slog.Any("error", err))
		return
	}
	s.breaker.RecordSuccess()
}

// processTrade runs the full pipeline for one tick:
// daily reset check -> decode -> allow-list -> ledger -> sweep -> classify
// -> book insert -> push hand-off. at is the tick's arrival time for sweep
// window purposes: wall clock on the live path, event time on replay.
func (s *Scanner) processTrade(ev *event.OptionTradeEvent, at time.Time) {
	// Expected feed noise is dropped without logging (high-rate stream).
	if ev.Symbol == "" || ev.PriceMicros == 0 || ev.Size == 0 {
		return
	}

	alert, unusual := s.evaluateTick(ev, at)
	if unusual {
		select {
		case s.alertCh <- alert:
		default:
			// Subscribers are lagging; the hotpath never waits for them.
		}
	}
}

// evaluateTick holds the write lock for the stateful part of the pipeline.
// Deferred unlock: a panic here (e.g. overflow in premium math) must not
// leave the lock held, or the post-mortem dump in Run would deadlock.
func (s *Scanner) evaluateTick(ev *event.OptionTradeEvent, at time.Time) (domain.Alert, bool) {
	day := time.UnixMicro(int64(ev.Ts)).UTC().Format(epochLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	// No tick may be classified against state straddling two days.
	if day != s.epoch {
		s.resetLocked(day)
	}

	parsed, ok := domain.ParseOCC(ev.Symbol)
	if !ok || !s.classifier.Tracked(parsed.Underlying) {
		return domain.Alert{}, false
	}

	cumVolume := s.ledger.Add(ev.Symbol, ev.Size)
	isSweep := s.sweeps.Observe(ev.Symbol, ev.Exchange, at)

	alert, unusual := s.classifier.Classify(ev, parsed, isSweep, cumVolume)
	if unusual {
		s.book.Insert(alert)
	}
	return alert, unusual
}

// ProcessSync runs an event through the pipeline synchronously without
// journaling. Used exclusively by the replayer for deterministic re-runs:
// sweep windows are evaluated against the tick's recorded event time, not
// the wall clock, so replay reproduces the session's verdicts.
func (s *Scanner) ProcessSync(ev event.Event) {
	if e, ok := ev.(*event.OptionTradeEvent); ok {
		s.processTrade(e, time.UnixMicro(int64(e.Ts)).UTC())
		return
	}
	slog.Warn("Unknown event type in replay", slog.Any("type", ev.GetType()))
}

func (s *Scanner) dispatchAlerts(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-s.alertCh:
			s.subMu.Lock()
			subs := s.subs
			s.subMu.Unlock()
			for _, fn := range subs {
				fn(a)
			}
		}
	}
}

// resetLocked clears all daily state. Caller holds s.mu.
func (s *Scanner) resetLocked(day string) {
	s.ledger.Reset()
	s.sweeps.Reset()
	s.book.Clear()
	prev := s.epoch
	s.epoch = day
	if prev != "" {
		slog.Info("Daily reset, cleared volume/sweep/alert state",
			slog.String("prev", prev), slog.String("day", day))
	}
}

// Reset wipes all scanner state immediately (explicit constructor-pair
// operation; daily rollover happens automatically on the tick path).
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked("")
}

// RecentAlerts returns a snapshot of the ranked alert buffer.
func (s *Scanner) RecentAlerts() []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.book.Recent()
}

// FlowSummary computes the aggregate rollup over the current buffer.
func (s *Scanner) FlowSummary() domain.FlowSummary {
	s.mu.RLock()
	alerts := s.book.Recent()
	s.mu.RUnlock()
	return BuildFlowSummary(alerts)
}

// CumulativeVolume returns today's traded size for one contract.
func (s *Scanner) CumulativeVolume(symbol string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Volume(symbol)
}

// DumpState writes the current state to a file (for post-mortem).
func (s *Scanner) DumpState(filename string) {
	slog.Info("Dumping scanner state...", slog.String("file", filename))

	s.mu.RLock()
	data := struct {
		Epoch     string          `json:"epoch"`
		Contracts int             `json:"contracts_tracked"`
		Alerts    []domain.Alert  `json:"alerts"`
		Ts        quant.TimeStamp `json:"dumped_at"`
	}{
		Epoch:     s.epoch,
		Contracts: s.ledger.Len(),
		Alerts:    s.book.Recent(),
		Ts:        quant.TimeStamp(time.Now().UnixMicro()),
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
