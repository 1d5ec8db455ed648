package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the income/expense breakdown of a ledger at a point in time.
type Balance struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// CategoryAmount represents an expense total aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// Snapshot is the read-only view of a committed ledger handed to mirrors.
type Snapshot struct {
	ID           string
	CommittedAt  time.Time
	Transactions []Transaction
	Balance      Balance
	ByCategory   []CategoryAmount
}
