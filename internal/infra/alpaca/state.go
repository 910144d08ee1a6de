package alpaca

// ConnState models the feed connection lifecycle explicitly so the
// fatal-vs-retryable distinction and the backoff-reset rule are testable
// without a real network.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateAuthenticating
	StateSubscribed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateSubscribed:
		return "SUBSCRIBED"
	default:
		return "UNKNOWN"
	}
}
