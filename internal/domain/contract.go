package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OptionType distinguishes calls from puts.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParsedContract holds the structured fields of an OCC option symbol.
type ParsedContract struct {
	Underlying string          `json:"underlying"`
	Expiration time.Time       `json:"expiration"`
	Type       OptionType      `json:"type"`
	Strike     decimal.Decimal `json:"strike"`
}

// occSuffixLen is the fixed-width tail of an OCC symbol:
// YYMMDD (6) + C/P (1) + strike*1000 zero-padded (8).
const occSuffixLen = 15

// ParseOCC decodes an OCC-style option symbol such as "AAPL240119C00150000"
// into its parts. Everything before the 15-char suffix is the underlying
// ticker. Returns ok=false for inputs too short to carry the suffix or with
// an empty underlying; callers drop such ticks instead of treating them as
// errors.
func ParseOCC(symbol string) (ParsedContract, bool) {
	if len(symbol) < occSuffixLen {
		return ParsedContract{}, false
	}

	split := len(symbol) - occSuffixLen
	underlying := strings.TrimSpace(symbol[:split])
	if underlying == "" {
		return ParsedContract{}, false
	}
	tail := symbol[split:]

	yy, err1 := strconv.Atoi(tail[0:2])
	mm, err2 := strconv.Atoi(tail[2:4])
	dd, err3 := strconv.Atoi(tail[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return ParsedContract{}, false
	}

	var typ OptionType
	switch tail[6] {
	case 'C':
		typ = Call
	case 'P':
		typ = Put
	default:
		return ParsedContract{}, false
	}

	strikeRaw, err := strconv.ParseInt(tail[7:], 10, 64)
	if err != nil {
		return ParsedContract{}, false
	}

	return ParsedContract{
		Underlying: underlying,
		Expiration: time.Date(2000+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC),
		Type:       typ,
		Strike:     decimal.New(strikeRaw, -3),
	}, true
}
