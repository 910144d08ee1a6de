package domain

import (
	"github.com/shopspring/decimal"

	"flow_go/pkg/quant"
)

// Badge classifies why a trade was flagged. Priority: SWEEP > BLOCK > UNUSUAL.
type Badge string

const (
	BadgeSweep   Badge = "SWEEP"
	BadgeBlock   Badge = "BLOCK"
	BadgeUnusual Badge = "UNUSUAL"
)

// Sentiment is the directional bias inferred from the contract type.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
)

// SentimentOf maps call -> bullish, put -> bearish.
func SentimentOf(typ OptionType) Sentiment {
	if typ == Call {
		return Bullish
	}
	return Bearish
}

// Alert is an unusual-activity record. Immutable once constructed; owned by
// the alert book until evicted.
type Alert struct {
	Symbol           string          `json:"symbol"` // OCC contract symbol
	Underlying       string          `json:"underlying"`
	Strike           decimal.Decimal `json:"strike"`
	Type             OptionType      `json:"type"`
	Expiration       string          `json:"expiration"` // YYYY-MM-DD
	Sentiment        Sentiment       `json:"sentiment"`
	LastPrice        decimal.Decimal `json:"last_price"`
	TradeSize        int64           `json:"trade_size"`
	Volume           int64           `json:"volume"` // cumulative today
	EstimatedPremium int64           `json:"estimated_premium"`
	Badge            Badge           `json:"badge"`
	Ts               quant.TimeStamp `json:"ts"`
}
