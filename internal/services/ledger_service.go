package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

var (
	// ErrNotConfirmed is returned by DeleteAll when the caller did not confirm.
	ErrNotConfirmed = errors.New("bulk delete not confirmed")

	// ErrNotLoaded is returned by Commit when the persisted ledger was never
	// read. Saving then would replace it with the session's partial view.
	ErrNotLoaded = errors.New("persisted ledger was not loaded")
)

// Mirror receives a read-only snapshot after every successful commit.
type Mirror interface {
	Name() string
	Mirror(ctx context.Context, snap core.Snapshot) error
	Close() error
}

// LedgerService owns the session ledger and is the only place that persists
// it. Persistence happens through Commit and nowhere else.
type LedgerService struct {
	store         storage.Store
	mirrors       []Mirror
	mirrorTimeout time.Duration
	ledger        *ledger.Ledger
	loaded        bool
	loadErr       error
	now           func() time.Time
}

func NewLedgerService(store storage.Store, mirrorTimeout time.Duration, mirrors ...Mirror) *LedgerService {
	if mirrorTimeout <= 0 {
		mirrorTimeout = 10 * time.Second
	}
	return &LedgerService{
		store:         store,
		mirrors:       mirrors,
		mirrorTimeout: mirrorTimeout,
		ledger:        ledger.New(nil),
		now:           time.Now,
	}
}

// Open loads the persisted ledger. On failure the session ledger is empty,
// the error is returned, and Commit refuses to write until a later Open
// succeeds.
func (s *LedgerService) Open(ctx context.Context) (*ledger.Ledger, error) {
	txs, err := s.store.Load(ctx)
	if err != nil {
		s.ledger = ledger.New(nil)
		s.loaded = false
		s.loadErr = err
		slog.ErrorContext(ctx, "Failed to load ledger",
			log.NewFields().
				WithComponent(log.ComponentLedger).
				WithOperation(log.OpLoad).
				WithError(err).
				ToSlice()...)
		return s.ledger, fmt.Errorf("load ledger: %w", err)
	}
	s.ledger = ledger.New(txs)
	s.loaded = true
	s.loadErr = nil
	slog.InfoContext(ctx, "Ledger opened",
		log.FieldComponent, log.ComponentLedger,
		log.FieldCount, s.ledger.Len())
	return s.ledger, nil
}

// Ledger returns the in-memory session ledger.
func (s *LedgerService) Ledger() *ledger.Ledger {
	return s.ledger
}

// Commit saves the full ledger and then fans a snapshot out to every mirror.
// Mirror failures are logged and do not fail the commit. Commit returns
// ErrNotLoaded unless Open succeeded.
func (s *LedgerService) Commit(ctx context.Context) (core.Snapshot, error) {
	if !s.loaded {
		if s.loadErr != nil {
			return core.Snapshot{}, fmt.Errorf("%w: %v", ErrNotLoaded, s.loadErr)
		}
		return core.Snapshot{}, ErrNotLoaded
	}

	txs := s.ledger.Transactions()
	if err := s.store.Save(ctx, txs); err != nil {
		return core.Snapshot{}, fmt.Errorf("save ledger: %w", err)
	}

	snap := core.Snapshot{
		ID:           uuid.NewString(),
		CommittedAt:  s.now().UTC(),
		Transactions: txs,
		Balance:      s.ledger.Balance(),
		ByCategory:   s.ledger.CategorySummary(),
	}

	slog.InfoContext(ctx, "Ledger committed",
		log.NewFields().
			WithComponent(log.ComponentLedger).
			WithOperation(log.OpCommit).
			WithCommit(snap.ID, len(txs)).
			ToSlice()...)

	s.mirror(ctx, snap)
	return snap, nil
}

func (s *LedgerService) mirror(ctx context.Context, snap core.Snapshot) {
	if len(s.mirrors) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.mirrorTimeout)
	defer cancel()

	var g errgroup.Group
	for _, m := range s.mirrors {
		g.Go(func() error {
			start := time.Now()
			err := m.Mirror(ctx, snap)
			fields := log.NewFields().
				WithComponent(log.ComponentMirror).
				WithOperation(log.OpMirror).
				WithCommit(snap.ID, len(snap.Transactions)).
				WithError(err)
			fields[log.FieldMirror] = m.Name()
			fields[log.FieldDuration] = time.Since(start).Milliseconds()
			fields[log.FieldSuccess] = err == nil
			if err != nil {
				slog.ErrorContext(ctx, "Failed to mirror ledger commit", fields.ToSlice()...)
				return nil
			}
			slog.DebugContext(ctx, "Ledger commit mirrored", fields.ToSlice()...)
			return nil
		})
	}
	_ = g.Wait()
}

// DeleteAll clears the ledger and commits immediately, but only when the
// caller confirmed. Without confirmation nothing changes.
func (s *LedgerService) DeleteAll(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, ErrNotConfirmed
	}
	if !s.loaded {
		return 0, ErrNotLoaded
	}
	n := s.ledger.Clear()
	slog.InfoContext(ctx, "Ledger cleared",
		log.FieldComponent, log.ComponentLedger,
		log.FieldOperation, log.OpClear,
		log.FieldCount, n)
	if _, err := s.Commit(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Close closes the store and every mirror.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	for _, m := range s.mirrors {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("mirror %s: %w", m.Name(), err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}
