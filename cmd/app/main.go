package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flow_go/internal/app"
	"flow_go/internal/domain"
	"flow_go/internal/engine"
	"flow_go/internal/infra/alpaca"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := bootstrap.Config

	// 4. Scanner (The Hotpath Loop)
	scanner := engine.NewScanner(engine.ScannerConfig{
		InboxSize:   cfg.Scanner.InboxSize,
		MaxAlerts:   cfg.Scanner.MaxAlerts,
		SweepWindow: time.Duration(cfg.Scanner.SweepWindowMS) * time.Millisecond,
		SweepVenues: cfg.Scanner.SweepVenues,
		Thresholds: engine.Thresholds{
			BlockSize:    cfg.Scanner.BlockSize,
			HighVolume:   cfg.Scanner.HighVolume,
			LargePremium: cfg.Scanner.LargePremiumDollar,
		},
		Underlyings: cfg.Feed.Underlyings,
	}, bootstrap.Journal)

	scanner.OnAlert(func(a domain.Alert) {
		slog.Info("🚨 Flow alert",
			slog.String("badge", string(a.Badge)),
			slog.String("symbol", a.Symbol),
			slog.String("sentiment", string(a.Sentiment)),
			slog.Int64("size", a.TradeSize),
			slog.Int64("premium", a.EstimatedPremium))
	})

	go scanner.Run(ctx)
	slog.InfoContext(ctx, "✅ Scanner (Hotpath) started",
		slog.Int("underlyings", len(cfg.Feed.Underlyings)))

	// 5. Alpaca Options Feed Worker (Gateway)
	nextSeq := uint64(1)
	feedWorker := alpaca.NewWorker(cfg.Feed.WSURL, cfg.Feed.Key, cfg.Feed.Secret, scanner.Inbox(), &nextSeq)
	if err := feedWorker.Connect(ctx); err != nil {
		slog.Error("Failed to start options feed", slog.Any("error", err))
	}
	defer feedWorker.Disconnect()
	slog.InfoContext(ctx, "✅ Options feed worker started", slog.String("url", feedWorker.URL()))

	slog.InfoContext(ctx, "✨ Flow scanner fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
