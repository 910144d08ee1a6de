package replay

import (
	"context"
	"fmt"
	"log/slog"

	"flow_go/internal/engine"
	"flow_go/internal/storage"
)

// Replayer reads captured ticks from a journal and feeds them into a
// Scanner synchronously, so a recorded session can be re-run
// deterministically for debugging.
type Replayer struct {
	journal *storage.TickJournal
}

// NewReplayer opens the journal at dbPath.
func NewReplayer(dbPath string) (*Replayer, error) {
	journal, err := storage.NewTickJournal(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Replayer{journal: journal}, nil
}

// RunReplay replays all captured ticks into the provided scanner in
// sequence order. The scanner must not be running its async loop.
func (r *Replayer) RunReplay(ctx context.Context, s *engine.Scanner) (int, error) {
	events, err := r.journal.LoadEvents(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to load ticks: %w", err)
	}

	for _, ev := range events {
		s.ProcessSync(ev)
	}

	slog.Info("Replay complete", slog.Int("events", len(events)))
	return len(events), nil
}

// Close releases the underlying journal.
func (r *Replayer) Close() error {
	return r.journal.Close()
}
