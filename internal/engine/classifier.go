package engine

import (
	"github.com/shopspring/decimal"

	"flow_go/internal/domain"
	"flow_go/internal/event"
)

// Thresholds are the tunable "unusual" cutoffs. Values are configuration,
// not algorithm: changing them never changes the classification shape.
type Thresholds struct {
	BlockSize    int64 // contracts per single trade
	HighVolume   int64 // cumulative contracts per day
	LargePremium int64 // whole dollars
}

// DefaultThresholds returns the empirically tuned production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlockSize:    50,
		HighVolume:   500,
		LargePremium: 100000,
	}
}

// Classifier decides routine vs unusual for a single trade and constructs
// the Alert on a positive verdict. Pure decision logic: no state beyond the
// allow-list, no side effects; inserting into the book is the caller's job.
type Classifier struct {
	thresholds Thresholds
	tracked    map[string]struct{}
}

// NewClassifier creates a classifier for the given tracked underlyings.
func NewClassifier(th Thresholds, underlyings []string) *Classifier {
	tracked := make(map[string]struct{}, len(underlyings))
	for _, u := range underlyings {
		tracked[u] = struct{}{}
	}
	return &Classifier{thresholds: th, tracked: tracked}
}

// Tracked reports whether the underlying is on the allow-list. Contracts on
// untracked underlyings are dropped silently upstream, never alerted.
func (c *Classifier) Tracked(underlying string) bool {
	_, ok := c.tracked[underlying]
	return ok
}

// Classify evaluates one trade. Badge priority: SWEEP > BLOCK > UNUSUAL.
// Returns ok=false for routine trades.
func (c *Classifier) Classify(ev *event.OptionTradeEvent, parsed domain.ParsedContract, isSweep bool, cumVolume int64) (domain.Alert, bool) {
	premium := ev.PriceMicros.Premium(ev.Size)

	isBlock := ev.Size > c.thresholds.BlockSize
	isHighVolume := cumVolume > c.thresholds.HighVolume
	isLargePremium := premium > c.thresholds.LargePremium

	if !isSweep && !isBlock && !isHighVolume && !isLargePremium {
		return domain.Alert{}, false
	}

	badge := domain.BadgeUnusual
	switch {
	case isSweep:
		badge = domain.BadgeSweep
	case isBlock:
		badge = domain.BadgeBlock
	}

	return domain.Alert{
		Symbol:           ev.Symbol,
		Underlying:       parsed.Underlying,
		Strike:           parsed.Strike,
		Type:             parsed.Type,
		Expiration:       parsed.Expiration.Format("2006-01-02"),
		Sentiment:        domain.SentimentOf(parsed.Type),
		LastPrice:        decimal.New(int64(ev.PriceMicros), -6),
		TradeSize:        ev.Size,
		Volume:           cumVolume,
		EstimatedPremium: premium,
		Badge:            badge,
		Ts:               ev.Ts,
	}, true
}
