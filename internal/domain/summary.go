package domain

// UnderlyingFlow tallies flagged activity for one underlying ticker.
type UnderlyingFlow struct {
	Calls   int   `json:"calls"`
	Puts    int   `json:"puts"`
	Premium int64 `json:"premium"`
}

// FlowSummary is a point-in-time rollup of the current alert book.
type FlowSummary struct {
	TotalAlerts      int                       `json:"total_alerts"`
	TotalCallPremium int64                     `json:"total_call_premium"`
	TotalPutPremium  int64                     `json:"total_put_premium"`
	TotalPremium     int64                     `json:"total_premium"`
	CallPutRatio     float64                   `json:"call_put_ratio"`
	TopBullish       string                    `json:"top_bullish"`
	TopBearish       string                    `json:"top_bearish"`
	ByUnderlying     map[string]UnderlyingFlow `json:"by_underlying"`
}
