package infra

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// FeedHandler defines feed-specific protocol logic for the FeedWorker.
// All callbacks except Write-side helpers run on the worker's goroutine.
type FeedHandler interface {
	ID() string
	URL() string
	OnConnecting()
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	OnDisconnect(err error)
}

// FeedWorker manages the lifecycle of one long-lived WebSocket feed
// connection: dial, read loop, keepalive pings, and reconnect with
// exponential backoff. The backoff counter resets only when the handler
// calls ResetBackoff (after a successful authentication), and Abort stops
// the reconnect loop permanently for fatal protocol errors.
type FeedWorker struct {
	handler FeedHandler
	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	retry atomic.Int32
	fatal atomic.Bool

	ReadTimeout      time.Duration
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
}

// NewFeedWorker creates a worker for the given handler.
func NewFeedWorker(handler FeedHandler) *FeedWorker {
	return &FeedWorker{
		handler:          handler,
		ReadTimeout:      60 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
	}
}

// Start initiates the connection loop.
func (w *FeedWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker and waits for the loop to exit.
func (w *FeedWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
}

// Abort marks the connection fatally failed: the current socket is closed
// and no reconnect is scheduled. Used for auth/entitlement rejections that
// no amount of retrying can fix.
func (w *FeedWorker) Abort() {
	w.fatal.Store(true)
	w.close()
}

// Aborted reports whether the worker hit a fatal error.
func (w *FeedWorker) Aborted() bool {
	return w.fatal.Load()
}

// ResetBackoff resets the reconnect delay to its minimum. Handlers call
// this on successful authentication, not on a bare TCP connect.
func (w *FeedWorker) ResetBackoff() {
	w.retry.Store(0)
}

// RetryCount returns the current reconnect attempt counter (for
// monitoring and tests).
func (w *FeedWorker) RetryCount() int {
	return int(w.retry.Load())
}

// runLoop owns the single reconnect timer: one goroutine, one pending wait,
// so a new attempt is never scheduled while another is outstanding.
func (w *FeedWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if w.fatal.Load() {
			slog.Error("Feed aborted, not reconnecting", "id", w.handler.ID())
			return
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Feed connection failed", "id", w.handler.ID(), "err", err)
			w.handler.OnDisconnect(err)
		} else {
			err := w.process(ctx)
			w.handler.OnDisconnect(err)
		}

		if w.fatal.Load() {
			slog.Error("Feed aborted, not reconnecting", "id", w.handler.ID())
			return
		}

		retry := int(w.retry.Load())
		delay := CalculateBackoff(retry)
		w.retry.Store(int32(retry + 1))
		slog.Warn("Feed reconnecting", "id", w.handler.ID(), "delay", delay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (w *FeedWorker) connect(ctx context.Context) error {
	w.handler.OnConnecting()

	dialer := websocket.Dialer{HandshakeTimeout: w.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, w.handler.URL(), nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("OnConnect failed: %w", err)
	}

	if w.PingInterval > 0 {
		go w.pingLoop(ctx)
	}

	slog.Info("Feed connected", "id", w.handler.ID())
	return nil
}

func (w *FeedWorker) process(ctx context.Context) error {
	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return nil
		}

		c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		_, msg, err := c.ReadMessage()
		if err != nil {
			w.close()
			return err
		}

		w.handler.OnMessage(ctx, msg)
	}
}

func (w *FeedWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(w.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			c := w.conn
			w.mu.RUnlock()
			if c == nil {
				return
			}
			deadline := time.Now().Add(5 * time.Second)
			if err := c.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				slog.Warn("Feed ping failed", "id", w.handler.ID(), "err", err)
				w.close()
				return
			}
		}
	}
}

// Write sends a message on the current connection. Thread-safe.
func (w *FeedWorker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	c := w.conn
	w.mu.RUnlock()

	if c == nil {
		return fmt.Errorf("feed not connected")
	}
	return c.WriteMessage(msgType, data)
}

func (w *FeedWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
