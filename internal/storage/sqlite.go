package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ledger in a SQLite table ordered by position.
// Amounts are stored as TEXT to keep them exact.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(context.Background(), dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Load reads every row in position order. Rows that do not decode make
// the whole ledger malformed, which yields an empty ledger; a failing query
// is returned as an error.
func (s *SQLiteStore) Load(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, amount, category FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var recs []record
	for rows.Next() {
		var r record
		if err := rows.Scan(&r.Type, &r.Amount, &r.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	txs, err := decodeRecords(recs)
	if err != nil {
		slog.WarnContext(ctx, "Ledger table has malformed rows, starting empty",
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

// Save replaces all rows inside a single SQL transaction.
func (s *SQLiteStore) Save(ctx context.Context, txs []core.Transaction) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (position, kind, amount, category) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range encodeRecords(txs) {
		if _, err = stmt.ExecContext(ctx, i+1, r.Type, r.Amount, r.Category); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Ledger saved",
		log.FieldComponent, log.ComponentStorage,
		log.FieldPath, s.path,
		log.FieldCount, len(txs))
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
