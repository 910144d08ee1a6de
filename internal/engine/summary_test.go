package engine

import (
	"testing"

	"flow_go/internal/domain"
)

func flowAlert(underlying string, typ domain.OptionType, premium int64) domain.Alert {
	return domain.Alert{
		Underlying:       underlying,
		Type:             typ,
		EstimatedPremium: premium,
	}
}

func TestBuildFlowSummary_Totals(t *testing.T) {
	alerts := []domain.Alert{
		flowAlert("AAPL", domain.Call, 100000),
		flowAlert("AAPL", domain.Call, 50000),
		flowAlert("TSLA", domain.Put, 75000),
	}

	sum := BuildFlowSummary(alerts)

	if sum.TotalAlerts != 3 {
		t.Errorf("total alerts: got %d, want 3", sum.TotalAlerts)
	}
	if sum.TotalCallPremium != 150000 {
		t.Errorf("call premium: got %d, want 150000", sum.TotalCallPremium)
	}
	if sum.TotalPutPremium != 75000 {
		t.Errorf("put premium: got %d, want 75000", sum.TotalPutPremium)
	}
	if sum.TotalPremium != 225000 {
		t.Errorf("total premium: got %d, want 225000", sum.TotalPremium)
	}
	if sum.CallPutRatio != 2.0 {
		t.Errorf("ratio: got %v, want 2.0", sum.CallPutRatio)
	}
	if sum.TopBullish != "AAPL" {
		t.Errorf("topBullish: got %q, want AAPL", sum.TopBullish)
	}
	if sum.TopBearish != "TSLA" {
		t.Errorf("topBearish: got %q, want TSLA", sum.TopBearish)
	}

	aapl := sum.ByUnderlying["AAPL"]
	if aapl.Calls != 2 || aapl.Puts != 0 || aapl.Premium != 150000 {
		t.Errorf("AAPL rollup wrong: %+v", aapl)
	}
}

func TestBuildFlowSummary_RatioSentinels(t *testing.T) {
	t.Run("Calls Only", func(t *testing.T) {
		sum := BuildFlowSummary([]domain.Alert{flowAlert("AAPL", domain.Call, 1000)})
		if sum.CallPutRatio != 999 {
			t.Errorf("calls-only ratio: got %v, want 999", sum.CallPutRatio)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		sum := BuildFlowSummary(nil)
		if sum.CallPutRatio != 0 {
			t.Errorf("empty ratio: got %v, want 0", sum.CallPutRatio)
		}
		if sum.TopBullish != "" || sum.TopBearish != "" {
			t.Error("empty summary must have no top names")
		}
	})
}

func TestBuildFlowSummary_AlphabeticalTieBreak(t *testing.T) {
	// NVDA and AMD each have one call-flagged alert; the tie breaks
	// alphabetically, independent of insertion order.
	alerts := []domain.Alert{
		flowAlert("NVDA", domain.Call, 1000),
		flowAlert("AMD", domain.Call, 2000),
		flowAlert("TSLA", domain.Put, 500),
		flowAlert("META", domain.Put, 500),
	}

	sum := BuildFlowSummary(alerts)
	if sum.TopBullish != "AMD" {
		t.Errorf("topBullish tie: got %q, want AMD", sum.TopBullish)
	}
	if sum.TopBearish != "META" {
		t.Errorf("topBearish tie: got %q, want META", sum.TopBearish)
	}
}
