package sheets

import (
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func snapshot() core.Snapshot {
	return core.Snapshot{
		ID: "c1",
		Transactions: []core.Transaction{
			{Kind: core.Income, Amount: decimal.RequireFromString("1000.00"), Category: core.Salary},
			{Kind: core.Expense, Amount: decimal.RequireFromString("200.50"), Category: core.Food},
		},
		Balance: core.Balance{
			Income:  decimal.RequireFromString("1000.00"),
			Expense: decimal.RequireFromString("200.50"),
			Net:     decimal.RequireFromString("799.50"),
		},
		ByCategory: []core.CategoryAmount{{Category: core.Food, Amount: decimal.RequireFromString("200.50")}},
	}
}

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows(snapshot())
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Type" {
		t.Fatalf("expected header first, got %v", rows[0])
	}
	if rows[1][0] != "Income" || rows[1][1] != "1000.00" || rows[1][2] != "Salary" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
	if rows[2][1] != "200.50" {
		t.Fatalf("expected exact decimal text, got %v", rows[2][1])
	}
}

func TestTransactionRowsEmpty(t *testing.T) {
	rows := TransactionRows(core.Snapshot{})
	if len(rows) != 1 {
		t.Fatalf("expected only the header, got %v", rows)
	}
}

func TestBalanceRows(t *testing.T) {
	rows := BalanceRows(snapshot())
	if rows[2][0] != "Balance" || rows[2][1] != "799.50" {
		t.Fatalf("unexpected balance row: %v", rows[2])
	}
	last := rows[len(rows)-1]
	if last[0] != "Food" || last[1] != "200.50" {
		t.Fatalf("unexpected category row: %v", last)
	}

	if got := len(BalanceRows(core.Snapshot{})); got != 3 {
		t.Fatalf("expected only balance rows without expenses, got %d", got)
	}
}
