package infra

import (
	"time"
)

const (
	// Reconnect schedule for the market-data feed: 1s, 2s, 4s, ... capped
	// at 30s. Reset to the base only after a successful authentication,
	// not on a bare TCP connect.
	BackoffBase = 1 * time.Second
	BackoffMax  = 30 * time.Second
)

// CalculateBackoff returns the reconnect delay for a given retry count:
// BackoffBase * 2^retryCount, capped at BackoffMax. Negative counts return
// the base delay.
func CalculateBackoff(retryCount int) time.Duration {
	if retryCount < 0 {
		return BackoffBase
	}

	// 2^30 seconds already dwarfs the cap; avoid shift overflow.
	if retryCount > 30 {
		return BackoffMax
	}

	backoff := BackoffBase * time.Duration(1<<retryCount)
	if backoff > BackoffMax {
		return BackoffMax
	}
	return backoff
}
