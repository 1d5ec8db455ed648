// Package storage persists the ledger. Every backend rewrites the full
// sequence on Save and degrades to an empty ledger when the persisted data
// is missing or malformed.
package storage

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// Store is the port the ledger service loads from and commits to.
type Store interface {
	Load(ctx context.Context) ([]core.Transaction, error)
	Save(ctx context.Context, txs []core.Transaction) error
	Close() error
}

// ErrMalformed marks persisted data that cannot be decoded into transactions.
var ErrMalformed = errors.New("malformed ledger data")

// record is the persisted shape of a transaction. Field names match the
// transactions.json documents written by earlier versions of the tracker.
type record struct {
	Type     string `json:"type"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
}

func toRecord(t core.Transaction) record {
	return record{
		Type:     t.Kind.String(),
		Amount:   core.AmountText(t.Amount),
		Category: t.Category.String(),
	}
}

func fromRecord(r record) (core.Transaction, error) {
	kind, err := core.ParseKind(r.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(r.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", r.Amount, err)
	}
	// Categories go through the same boundary rule as user input.
	return core.Transaction{
		Kind:     kind,
		Amount:   amount,
		Category: core.ParseCategory(r.Category),
	}, nil
}

func encodeRecords(txs []core.Transaction) []record {
	out := make([]record, len(txs))
	for i, t := range txs {
		out[i] = toRecord(t)
	}
	return out
}

func decodeRecords(recs []record) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(recs))
	for i, r := range recs {
		t, err := fromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}
