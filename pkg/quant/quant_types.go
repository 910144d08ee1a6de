package quant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"flow_go/pkg/safe"
)

// PriceMicros represents price multiplied by 1,000,000 (10^6).
// E.g., 2.35 USD = 2,350,000 PriceMicros.
type PriceMicros int64

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

const (
	PriceScale = 1000000

	// ContractMultiplier is the equity-option deliverable size:
	// one contract controls 100 shares.
	ContractMultiplier = 100
)

// ToPriceMicros converts a float64 (from external API) to PriceMicros.
// Only used at the boundary. Internal logic uses PriceMicros directly.
func ToPriceMicros(f float64) PriceMicros {
	return PriceMicros(math.Round(f * PriceScale))
}

func (p PriceMicros) String() string {
	return fmt.Sprintf("%.6f", float64(p)/PriceScale)
}

// Premium returns the notional dollar value of a trade, rounded to whole
// dollars: price * size * 100.
func (p PriceMicros) Premium(size int64) int64 {
	notional := safe.SafeMul(safe.SafeMul(int64(p), size), ContractMultiplier)
	half := int64(PriceScale / 2)
	if notional < 0 {
		return safe.SafeDiv(notional-half, PriceScale)
	}
	return safe.SafeDiv(notional+half, PriceScale)
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}

// ToPriceMicrosStr converts a numeric string to PriceMicros without going
// through float64. Fixed-point string parsing, no float in the hotpath.
func ToPriceMicrosStr(s string) PriceMicros {
	return PriceMicros(parseFixedPoint(s, 6))
}

// parseFixedPoint parses a numeric string into an int64 with the given
// precision. E.g., parseFixedPoint("1.23", 6) -> 1,230,000.
func parseFixedPoint(s string, precision int) int64 {
	if s == "" || s == "null" {
		return 0
	}

	intStr, fracStr := s, ""
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		intStr, fracStr = s[:dot], s[dot+1:]
	}

	intPart, _ := strconv.ParseInt(intStr, 10, 64)
	for i := 0; i < precision; i++ {
		intPart *= 10
	}

	if fracStr == "" {
		return intPart
	}

	if len(fracStr) > precision {
		fracStr = fracStr[:precision]
	}
	fracPart, _ := strconv.ParseInt(fracStr, 10, 64)
	for i := len(fracStr); i < precision; i++ {
		fracPart *= 10
	}

	if strings.HasPrefix(intStr, "-") {
		return intPart - fracPart
	}
	return intPart + fracPart
}
