package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// FileStore keeps the ledger in a single JSON document.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns an empty ledger when the file is missing or malformed. Any
// other read failure is returned.
func (s *FileStore) Load(ctx context.Context) ([]core.Transaction, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "Ledger file not found, starting empty",
			log.FieldComponent, log.ComponentStorage,
			log.FieldPath, s.path)
		return []core.Transaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		slog.WarnContext(ctx, "Ledger file is not valid JSON, starting empty",
			log.FieldComponent, log.ComponentStorage,
			log.FieldPath, s.path,
			log.FieldError, err)
		return []core.Transaction{}, nil
	}

	txs, err := decodeRecords(recs)
	if err != nil {
		slog.WarnContext(ctx, "Ledger file has malformed records, starting empty",
			log.FieldComponent, log.ComponentStorage,
			log.FieldPath, s.path,
			log.FieldError, err)
		return []core.Transaction{}, nil
	}

	slog.DebugContext(ctx, "Ledger loaded",
		log.FieldComponent, log.ComponentStorage,
		log.FieldPath, s.path,
		log.FieldCount, len(txs))
	return txs, nil
}

// Save writes the full ledger to a temp file next to the target and renames
// it into place.
func (s *FileStore) Save(ctx context.Context, txs []core.Transaction) error {
	data, err := json.MarshalIndent(encodeRecords(txs), "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}

	slog.InfoContext(ctx, "Ledger saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldPath, s.path,
		log.FieldCount, len(txs))
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
