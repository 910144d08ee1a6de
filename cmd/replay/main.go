package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"flow_go/internal/engine"
	"flow_go/internal/infra"
	"flow_go/internal/replay"
)

// Replays a captured tick journal through a fresh scanner and prints the
// resulting flow summary and ranked alerts.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: replay <ticks.db>")
		os.Exit(1)
	}
	dbPath := os.Args[1]

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		slog.Error("❌ Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	replayer, err := replay.NewReplayer(dbPath)
	if err != nil {
		slog.Error("❌ Failed to open journal", slog.Any("error", err))
		os.Exit(1)
	}
	defer replayer.Close()

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
	}, nil)

	n, err := replayer.RunReplay(context.Background(), scanner)
	if err != nil {
		slog.Error("❌ Replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	summary := scanner.FlowSummary()
	out := struct {
		Events  int         `json:"events_replayed"`
		Summary interface{} `json:"summary"`
		Alerts  interface{} `json:"alerts"`
	}{
		Events:  n,
		Summary: summary,
		Alerts:  scanner.RecentAlerts(),
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		slog.Error("❌ Failed to marshal replay result", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(string(b))
}
