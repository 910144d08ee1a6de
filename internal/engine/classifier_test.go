package engine

import (
	"testing"

	"flow_go/internal/domain"
	"flow_go/internal/event"
	"flow_go/pkg/quant"
)

func tradeEvent(symbol string, price float64, size int64) *event.OptionTradeEvent {
	return &event.OptionTradeEvent{
		BaseEvent:   event.BaseEvent{Seq: 1, Ts: 1700000000000000},
		Symbol:      symbol,
		PriceMicros: quant.ToPriceMicros(price),
		Size:        size,
		Exchange:    "C",
	}
}

func mustParse(t *testing.T, symbol string) domain.ParsedContract {
	t.Helper()
	parsed, ok := domain.ParseOCC(symbol)
	if !ok {
		t.Fatalf("failed to parse %q", symbol)
	}
	return parsed
}

func TestClassifier_Block(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"AAPL"})
	ev := tradeEvent("AAPL240119C00150000", 2.00, 60)

	alert, ok := c.Classify(ev, mustParse(t, ev.Symbol), false, 60)
	if !ok {
		t.Fatal("60-lot trade must be flagged")
	}
	if alert.EstimatedPremium != 12000 {
		t.Errorf("premium: got %d, want 12000", alert.EstimatedPremium)
	}
	if alert.Badge != domain.BadgeBlock {
		t.Errorf("badge: got %v, want BLOCK", alert.Badge)
	}
	if alert.Sentiment != domain.Bullish {
		t.Errorf("call should be bullish, got %v", alert.Sentiment)
	}
}

func TestClassifier_HighVolume(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"AAPL"})
	ev := tradeEvent("AAPL240119P00150000", 1.00, 10)

	alert, ok := c.Classify(ev, mustParse(t, ev.Symbol), false, 510)
	if !ok {
		t.Fatal("cumulative volume over 500 must be flagged")
	}
	if alert.Badge != domain.BadgeUnusual {
		t.Errorf("badge: got %v, want UNUSUAL", alert.Badge)
	}
	if alert.Sentiment != domain.Bearish {
		t.Errorf("put should be bearish, got %v", alert.Sentiment)
	}
	if alert.Volume != 510 {
		t.Errorf("volume: got %d, want 510", alert.Volume)
	}
}

func TestClassifier_LargePremium(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"SPY"})
	// 25.00 * 45 * 100 = 112,500 > 100,000 but size and volume are small.
	ev := tradeEvent("SPY260220C00600000", 25.00, 45)

	alert, ok := c.Classify(ev, mustParse(t, ev.Symbol), false, 45)
	if !ok {
		t.Fatal("six-figure premium must be flagged")
	}
	if alert.EstimatedPremium != 112500 {
		t.Errorf("premium: got %d, want 112500", alert.EstimatedPremium)
	}
	if alert.Badge != domain.BadgeUnusual {
		t.Errorf("badge: got %v, want UNUSUAL", alert.Badge)
	}
}

func TestClassifier_Routine(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"AAPL"})
	// premium = 0.50 * 5 * 100 = 250; nothing crosses a threshold.
	ev := tradeEvent("AAPL240119C00150000", 0.50, 5)

	if _, ok := c.Classify(ev, mustParse(t, ev.Symbol), false, 100); ok {
		t.Error("routine trade must not produce an alert")
	}
}

func TestClassifier_SweepOutranksBlock(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"AAPL"})
	// Size alone would qualify as BLOCK; sweep takes priority.
	ev := tradeEvent("AAPL240119C00150000", 2.00, 60)

	alert, ok := c.Classify(ev, mustParse(t, ev.Symbol), true, 60)
	if !ok {
		t.Fatal("sweep must be flagged")
	}
	if alert.Badge != domain.BadgeSweep {
		t.Errorf("badge: got %v, want SWEEP", alert.Badge)
	}
}

func TestClassifier_SweepRegardlessOfSize(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"AAPL"})
	ev := tradeEvent("AAPL240119C00150000", 0.10, 1)

	alert, ok := c.Classify(ev, mustParse(t, ev.Symbol), true, 1)
	if !ok {
		t.Fatal("sweep must be flagged regardless of size/premium")
	}
	if alert.Badge != domain.BadgeSweep {
		t.Errorf("badge: got %v, want SWEEP", alert.Badge)
	}
}

func TestClassifier_TrackedFilter(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), []string{"AAPL", "TSLA"})
	if !c.Tracked("AAPL") || !c.Tracked("TSLA") {
		t.Error("allow-listed underlyings must be tracked")
	}
	if c.Tracked("GME") {
		t.Error("unlisted underlying must not be tracked")
	}
}

func TestClassifier_AdjustableThresholds(t *testing.T) {
	th := Thresholds{BlockSize: 10, HighVolume: 100, LargePremium: 1000}
	c := NewClassifier(th, []string{"AAPL"})
	ev := tradeEvent("AAPL240119C00150000", 0.50, 15)

	alert, ok := c.Classify(ev, mustParse(t, ev.Symbol), false, 15)
	if !ok {
		t.Fatal("trade over the lowered block threshold must be flagged")
	}
	if alert.Badge != domain.BadgeBlock {
		t.Errorf("badge: got %v, want BLOCK", alert.Badge)
	}
}
