package engine

import (
	"math"
	"sort"

	"flow_go/internal/domain"
	"flow_go/pkg/safe"
)

// callPutRatioSentinel stands in for "infinite" when call premium exists but
// put premium is zero.
const callPutRatioSentinel = 999

// BuildFlowSummary derives the per-underlying and global rollups from a
// snapshot of the alert book. Read-only; nothing is persisted.
//
// topBullish is the underlying with the most call-flagged alerts, topBearish
// the one with the most put-flagged alerts. Ties break alphabetically so the
// result is deterministic regardless of map iteration order.
func BuildFlowSummary(alerts []domain.Alert) domain.FlowSummary {
	var totalCall, totalPut int64
	byUnderlying := make(map[string]domain.UnderlyingFlow)

	for _, a := range alerts {
		flow := byUnderlying[a.Underlying]
		if a.Type == domain.Call {
			totalCall = safe.SafeAdd(totalCall, a.EstimatedPremium)
			flow.Calls++
		} else {
			totalPut = safe.SafeAdd(totalPut, a.EstimatedPremium)
			flow.Puts++
		}
		flow.Premium = safe.SafeAdd(flow.Premium, a.EstimatedPremium)
		byUnderlying[a.Underlying] = flow
	}

	names := make([]string, 0, len(byUnderlying))
	for name := range byUnderlying {
		names = append(names, name)
	}
	sort.Strings(names)

	var topBullish, topBearish string
	maxBull, maxBear := 0, 0
	for _, name := range names {
		flow := byUnderlying[name]
		if flow.Calls > maxBull {
			maxBull = flow.Calls
			topBullish = name
		}
		if flow.Puts > maxBear {
			maxBear = flow.Puts
			topBearish = name
		}
	}

	var ratio float64
	switch {
	case totalPut > 0:
		ratio = math.Round(float64(totalCall)/float64(totalPut)*100) / 100
	case totalCall > 0:
		ratio = callPutRatioSentinel
	}

	return domain.FlowSummary{
		TotalAlerts:      len(alerts),
		TotalCallPremium: totalCall,
		TotalPutPremium:  totalPut,
		TotalPremium:     safe.SafeAdd(totalCall, totalPut),
		CallPutRatio:     ratio,
		TopBullish:       topBullish,
		TopBearish:       topBearish,
		ByUnderlying:     byUnderlying,
	}
}
