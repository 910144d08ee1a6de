package alpaca

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"flow_go/internal/event"
)

// createMockStream creates a test WebSocket server running the given
// per-connection script.
func createMockStream(t *testing.T, script func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		script(conn)
	}))
}

func httpToWS(url string) string {
	return strings.Replace(url, "http://", "ws://", 1)
}

// readAction reads one frame and returns its "action" field.
func readAction(conn *websocket.Conn) (string, map[string]any, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil, err
	}
	var req map[string]any
	if err := json.Unmarshal(msg, &req); err != nil {
		return "", nil, err
	}
	action, _ := req["action"].(string)
	return action, req, nil
}

func TestWorker_AuthSubscribeTradeFlow(t *testing.T) {
	server := createMockStream(t, func(conn *websocket.Conn) {
		action, req, err := readAction(conn)
		if err != nil || action != "auth" {
			t.Errorf("expected auth request, got %q (err %v)", action, err)
			return
		}
		if req["key"] != "test-key" || req["secret"] != "test-secret" {
			t.Errorf("auth carried wrong credentials: %v", req)
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[{"T":"success","msg":"authenticated"}]`))

		action, req, err = readAction(conn)
		if err != nil || action != "subscribe" {
			t.Errorf("expected subscribe request, got %q (err %v)", action, err)
			return
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[{"T":"subscription","trades":["*"]}]`))

		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[{"T":"t","S":"AAPL240119C00150000","p":2.5,"s":60,"x":"C","t":"2024-01-18T15:30:00Z"}]`))
		time.Sleep(300 * time.Millisecond)
	})
	defer server.Close()

	inbox := make(chan event.Event, 16)
	var seq uint64
	worker := NewWorker(httpToWS(server.URL), "test-key", "test-secret", inbox, &seq)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	worker.Connect(ctx)
	defer worker.Disconnect()

	select {
	case ev := <-inbox:
		trade, ok := ev.(*event.OptionTradeEvent)
		if !ok {
			t.Fatalf("expected OptionTradeEvent, got %T", ev)
		}
		if trade.Symbol != "AAPL240119C00150000" {
			t.Errorf("symbol = %q", trade.Symbol)
		}
		if trade.PriceMicros != 2_500_000 {
			t.Errorf("price micros = %d, want 2500000", trade.PriceMicros)
		}
		if trade.Size != 60 {
			t.Errorf("size = %d, want 60", trade.Size)
		}
		if trade.Exchange != "C" {
			t.Errorf("exchange = %q, want C", trade.Exchange)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no trade event delivered to inbox")
	}

	if !worker.IsConnected() {
		t.Errorf("worker state = %v, want SUBSCRIBED", worker.State())
	}
	if worker.base.RetryCount() != 0 {
		t.Errorf("retry count = %d after auth, want 0", worker.base.RetryCount())
	}
}

func TestWorker_FatalAuthErrorDoesNotReconnect(t *testing.T) {
	var connections int32
	server := createMockStream(t, func(conn *websocket.Conn) {
		atomic.AddInt32(&connections, 1)
		if _, _, err := readAction(conn); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[{"T":"error","code":402,"msg":"auth failed"}]`))
		time.Sleep(300 * time.Millisecond)
	})
	defer server.Close()

	inbox := make(chan event.Event, 16)
	var seq uint64
	worker := NewWorker(httpToWS(server.URL), "bad-key", "bad-secret", inbox, &seq)

	worker.Connect(context.Background())
	defer worker.Disconnect()

	// First reconnect would fire after the 1s base delay; wait past the
	// second one too.
	time.Sleep(2500 * time.Millisecond)

	if got := atomic.LoadInt32(&connections); got != 1 {
		t.Errorf("expected exactly 1 connection attempt, got %d", got)
	}
	if worker.State() != StateDisconnected {
		t.Errorf("worker state = %v, want DISCONNECTED", worker.State())
	}
	if !worker.base.Aborted() {
		t.Error("base worker should be aborted after a fatal auth error")
	}
}

func TestWorker_MalformedFramesDropped(t *testing.T) {
	server := createMockStream(t, func(conn *websocket.Conn) {
		if _, _, err := readAction(conn); err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[{"T":"success","msg":"authenticated"}]`))
		if _, _, err := readAction(conn); err != nil {
			return
		}

		conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"T":"t","S":"","p":1.0}]`))
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`[{"T":"t","S":"TSLA260221P00252500","p":1.5,"s":10,"x":"N","t":"2026-02-20T14:00:00Z"}]`))
		time.Sleep(300 * time.Millisecond)
	})
	defer server.Close()

	inbox := make(chan event.Event, 16)
	var seq uint64
	worker := NewWorker(httpToWS(server.URL), "k", "s", inbox, &seq)

	worker.Connect(context.Background())
	defer worker.Disconnect()

	select {
	case ev := <-inbox:
		trade := ev.(*event.OptionTradeEvent)
		if trade.Symbol != "TSLA260221P00252500" {
			t.Errorf("symbol = %q, noise frames should have been dropped", trade.Symbol)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid trade after malformed frames was not delivered")
	}

	select {
	case ev := <-inbox:
		t.Errorf("unexpected extra event: %+v", ev)
	default:
	}
}

func TestWorker_DefaultURL(t *testing.T) {
	inbox := make(chan event.Event, 1)
	var seq uint64
	worker := NewWorker("", "k", "s", inbox, &seq)
	if worker.URL() != DefaultStreamURL {
		t.Errorf("URL = %q, want default stream endpoint", worker.URL())
	}
}
