package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"flow_go/internal/event"
	"flow_go/internal/infra"
	"flow_go/pkg/quant"
)

// Worker handles the options trade stream using infra.FeedWorker: it
// authenticates on connect, subscribes to the trade wildcard on the auth
// ack, and dispatches trade ticks into the scanner inbox. Filtering to the
// tracked allow-list happens in the scanner, not here.
type Worker struct {
	base   *infra.FeedWorker
	url    string
	key    string
	secret string
	inbox  chan<- event.Event
	seq    *uint64

	state atomic.Int32

	// Throttles warn-logging for feed noise (malformed messages, dropped
	// ticks): at most a small burst per second.
	logLimit *infra.RateLimiter
}

// NewWorker creates an options feed worker. url may be empty to use the
// default stream endpoint.
func NewWorker(url, key, secret string, inbox chan<- event.Event, seq *uint64) *Worker {
	if url == "" {
		url = DefaultStreamURL
	}
	w := &Worker{
		url:      url,
		key:      key,
		secret:   secret,
		inbox:    inbox,
		seq:      seq,
		logLimit: infra.NewRateLimiter(5, 1),
	}
	w.base = infra.NewFeedWorker(w)
	return w
}

// ID returns the worker identifier.
func (w *Worker) ID() string { return "ALPACA_OPTIONS" }

// URL returns the stream endpoint.
func (w *Worker) URL() string { return w.url }

// Connect starts the connection loop.
func (w *Worker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect terminates the connection.
func (w *Worker) Disconnect() {
	w.base.Stop()
}

// State returns the current connection state.
func (w *Worker) State() ConnState {
	return ConnState(w.state.Load())
}

// IsConnected reports whether the worker is subscribed and receiving.
func (w *Worker) IsConnected() bool {
	return w.State() == StateSubscribed
}

// OnConnecting is invoked before each dial attempt.
func (w *Worker) OnConnecting() {
	w.state.Store(int32(StateConnecting))
}

// OnConnect sends credentials as soon as the transport opens.
func (w *Worker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	w.state.Store(int32(StateAuthenticating))
	b, _ := json.Marshal(authRequest{Action: "auth", Key: w.key, Secret: w.secret})
	return w.base.Write(websocket.TextMessage, b)
}

// OnDisconnect is invoked on dial failure or read-loop exit.
func (w *Worker) OnDisconnect(err error) {
	w.state.Store(int32(StateDisconnected))
}

// OnMessage handles one inbound frame. The feed sends either a single JSON
// object or an array of objects; both forms are accepted. Malformed frames
// are dropped without a state transition.
func (w *Worker) OnMessage(ctx context.Context, msg []byte) {
	var batch []streamMessage

	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			w.warnThrottled("Malformed feed frame", err)
			return
		}
	} else {
		var single streamMessage
		if err := json.Unmarshal(trimmed, &single); err != nil {
			w.warnThrottled("Malformed feed frame", err)
			return
		}
		batch = append(batch, single)
	}

	for i := range batch {
		w.handleMessage(&batch[i])
	}
}

func (w *Worker) handleMessage(m *streamMessage) {
	switch m.T {
	case "success":
		if m.Msg == "authenticated" {
			slog.Info("Feed authenticated, subscribing to trades", "id", w.ID())
			w.state.Store(int32(StateSubscribed))
			w.base.ResetBackoff()
			b, _ := json.Marshal(subscribeRequest{Action: "subscribe", Trades: []string{"*"}})
			if err := w.base.Write(websocket.TextMessage, b); err != nil {
				slog.Warn("Subscribe request failed", "id", w.ID(), "err", err)
			}
		}

	case "subscription":
		slog.Info("Feed subscription confirmed", "id", w.ID())

	case "t":
		w.handleTrade(m)

	case "error":
		if m.Code == codeAuthFailed || m.Code == codeEntitlementDenied {
			// Requires credential or plan changes; retrying is pointless.
			slog.Error("Feed auth/entitlement rejected, giving up",
				"id", w.ID(), "code", m.Code, "msg", m.Msg)
			w.state.Store(int32(StateDisconnected))
			w.base.Abort()
			return
		}
		w.warnThrottledMsg("Feed error", m.Code, m.Msg)
	}
}

func (w *Worker) handleTrade(m *streamMessage) {
	// Incomplete trades are expected noise in a high-rate feed.
	if m.Symbol == "" || m.Price == "" || m.Size == 0 {
		return
	}

	ts := quant.TimeStamp(time.Now().UnixMicro())
	if t, err := time.Parse(time.RFC3339Nano, m.Timestamp); err == nil {
		ts = quant.TimeStamp(t.UnixMicro())
	}

	ev := event.AcquireOptionTradeEvent()
	ev.Seq = quant.NextSeq(w.seq)
	ev.Ts = ts
	ev.Symbol = m.Symbol
	ev.PriceMicros = quant.ToPriceMicrosStr(m.Price.String())
	ev.Size = m.Size
	ev.Exchange = m.Exchange

	select {
	case w.inbox <- ev:
	default:
		// Inbox full: drop, release to the pool to prevent a leak.
		event.ReleaseOptionTradeEvent(ev)
		w.warnThrottled("Scanner inbox full, dropping tick", nil)
	}
}

func (w *Worker) warnThrottled(msg string, err error) {
	if w.logLimit.TryAcquire() {
		slog.Warn(msg, "id", w.ID(), "err", err)
	}
}

func (w *Worker) warnThrottledMsg(msg string, code int, detail string) {
	if w.logLimit.TryAcquire() {
		slog.Warn(msg, "id", w.ID(), "code", code, "msg", detail)
	}
}
