package memory

import (
	"context"
	"log/slog"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// Mirror keeps every committed snapshot in memory and logs its rows.
// It backs MIRROR_MEMORY dry runs and tests.
type Mirror struct {
	mu    sync.Mutex
	snaps []core.Snapshot
	err   error
}

func New() *Mirror {
	return &Mirror{}
}

// FailWith makes subsequent Mirror calls return err.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Mirror) Name() string {
	return "memory"
}

func (m *Mirror) Mirror(ctx context.Context, snap core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snaps = append(m.snaps, snap)

	rows := sheets.TransactionRows(snap)
	slog.InfoContext(ctx, "Snapshot mirrored in memory",
		log.FieldComponent, log.ComponentMirror,
		log.FieldCommitID, snap.ID,
		"rows", len(rows))
	return nil
}

// Snapshots returns a copy of the mirrored snapshots, oldest first.
func (m *Mirror) Snapshots() []core.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Snapshot(nil), m.snaps...)
}

func (m *Mirror) Close() error {
	return nil
}
