package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"flow_go/internal/event"
	"flow_go/internal/infra"
	"flow_go/internal/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.TickJournal // nil when capture is disabled
	Unlock  func()
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, dirs, journal).
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Flow Go...")

	// 0. Runtime Warmup (GC Optimization)
	event.Warmup()
	slog.Info("🔥 Event Pool Warmed up")

	// 1. Load Config (Dynamic Path Resolution)
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Workspace layout: _workspace/data for journals, _workspace/logs.
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")
	logDir := filepath.Join(workDir, "logs")

	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := infra.EnsureDir(logDir); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	// 3.1 Singleton Instance Lock. Two processes journaling into the same
	// WAL file would corrupt it.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.Unlock = unlock

	// 4. Optional raw tick journal (single-writer WAL DB).
	if cfg.Journal.Enabled {
		dbPath := filepath.Join(dataDir, "ticks.db")
		journal, err := storage.NewTickJournal(dbPath)
		if err != nil {
			return err
		}
		b.Journal = journal

		now := time.Now()
		ctx := context.Background()
		if err := journal.UpsertMetadata(ctx, "session_start", now.UTC().Format(time.RFC3339), now.UnixMicro()); err != nil {
			slog.Warn("Failed to record session start", slog.Any("error", err))
		}
		if err := journal.UpsertMetadata(ctx, "feed_url", cfg.Feed.WSURL, now.UnixMicro()); err != nil {
			slog.Warn("Failed to record feed URL", slog.Any("error", err))
		}
		slog.Info("✅ Tick journal initialized (WAL-mode)", "path", dbPath)
	}

	return nil
}

// Shutdown releases bootstrap-owned resources.
func (b *Bootstrap) Shutdown() {
	if b.Journal != nil {
		b.Journal.Close()
	}
	if b.Unlock != nil {
		b.Unlock()
	}
}
