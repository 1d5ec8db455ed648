// Package ledger implements the in-memory transaction ledger: balance and
// category aggregation plus the add/delete operations the shell drives.
//
// A Ledger never persists itself. Callers hand Transactions() to a
// storage.Store when they decide to commit.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrOutOfRange        = errors.New("position out of range")
)

// InsufficientFundsError is returned when an expense exceeds the current net
// balance. It carries the balance so the caller can report it.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s",
		e.Requested.String(), e.Balance.String())
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// OutOfRangeError is returned by DeleteAt for positions outside 1..Len.
type OutOfRangeError struct {
	Position int
	Len      int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("position %d out of range 1..%d", e.Position, e.Len)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Entry is a transaction together with its 1-based display position.
type Entry struct {
	Position    int
	Transaction core.Transaction
}

// Ledger is the ordered sequence of recorded transactions. Duplicates are
// allowed; insertion order is display order and the basis for deletion.
type Ledger struct {
	txs []core.Transaction
}

// New returns a ledger holding a copy of txs.
func New(txs []core.Transaction) *Ledger {
	return &Ledger{txs: append([]core.Transaction(nil), txs...)}
}

func (l *Ledger) Len() int {
	return len(l.txs)
}

// Transactions returns a copy of the sequence in order.
func (l *Ledger) Transactions() []core.Transaction {
	return append([]core.Transaction(nil), l.txs...)
}

// Balance sums income and expense with exact decimal arithmetic.
func (l *Ledger) Balance() core.Balance {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range l.txs {
		switch t.Kind {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return core.Balance{
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}
}

// AddIncome appends an income entry.
func (l *Ledger) AddIncome(amount decimal.Decimal, category core.Category) (core.Transaction, error) {
	return l.add(core.Income, amount, category)
}

// AddExpense appends an expense entry unless it exceeds the current net
// balance, in which case the ledger is left untouched.
func (l *Ledger) AddExpense(amount decimal.Decimal, category core.Category) (core.Transaction, error) {
	if err := l.CheckExpense(amount); err != nil {
		return core.Transaction{}, err
	}
	return l.add(core.Expense, amount, category)
}

// CheckExpense reports whether an expense of amount would be accepted.
// The shell calls it before asking for a category, as the entry flow did.
func (l *Ledger) CheckExpense(amount decimal.Decimal) error {
	if err := core.ValidateAmount(amount); err != nil {
		return err
	}
	if net := l.Balance().Net; amount.GreaterThan(net) {
		return &InsufficientFundsError{Balance: net, Requested: amount}
	}
	return nil
}

func (l *Ledger) add(kind core.Kind, amount decimal.Decimal, category core.Category) (core.Transaction, error) {
	if category == "" {
		category = core.Uncategorized
	}
	t, err := core.NewTransaction(kind, amount, category)
	if err != nil {
		return core.Transaction{}, err
	}
	l.txs = append(l.txs, t)
	return t, nil
}

// CategorySummary totals expenses per category in first-seen order.
// Categories without expenses are omitted.
func (l *Ledger) CategorySummary() []core.CategoryAmount {
	var out []core.CategoryAmount
	index := make(map[core.Category]int)
	for _, t := range l.txs {
		if t.Kind != core.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			index[t.Category] = len(out)
			out = append(out, core.CategoryAmount{Category: t.Category, Amount: t.Amount})
			continue
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// List returns the entries numbered from 1.
func (l *Ledger) List() []Entry {
	out := make([]Entry, len(l.txs))
	for i, t := range l.txs {
		out[i] = Entry{Position: i + 1, Transaction: t}
	}
	return out
}

// DeleteAt removes and returns the entry at the 1-based position.
// Removing income may leave the net balance negative; that is accepted.
func (l *Ledger) DeleteAt(position int) (core.Transaction, error) {
	if position < 1 || position > len(l.txs) {
		return core.Transaction{}, &OutOfRangeError{Position: position, Len: len(l.txs)}
	}
	i := position - 1
	removed := l.txs[i]
	l.txs = append(l.txs[:i:i], l.txs[i+1:]...)
	return removed, nil
}

// Clear drops every entry and returns how many were removed.
func (l *Ledger) Clear() int {
	n := len(l.txs)
	l.txs = nil
	return n
}
