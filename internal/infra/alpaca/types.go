package alpaca

import "encoding/json"

// DefaultStreamURL is the OPRA options trade stream endpoint.
const DefaultStreamURL = "wss://stream.data.alpaca.markets/v1beta1/options"

// Error codes the feed reports that no retry can fix: bad credentials or a
// data plan without OPRA entitlement.
const (
	codeAuthFailed        = 402
	codeEntitlementDenied = 406
)

type authRequest struct {
	Action string `json:"action"` // "auth"
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type subscribeRequest struct {
	Action string   `json:"action"` // "subscribe"
	Trades []string `json:"trades"`
}

// streamMessage is the union of every inbound message shape. T
// discriminates: "success", "error", "subscription", or "t" (trade).
// Price uses json.Number so fixed-point parsing avoids float64.
type streamMessage struct {
	T    string `json:"T"`
	Msg  string `json:"msg,omitempty"`
	Code int    `json:"code,omitempty"`

	// Trade fields (T == "t").
	Symbol    string      `json:"S,omitempty"` // OCC contract symbol
	Price     json.Number `json:"p,omitempty"`
	Size      int64       `json:"s,omitempty"`
	Exchange  string      `json:"x,omitempty"`
	Timestamp string      `json:"t,omitempty"` // RFC 3339
}
