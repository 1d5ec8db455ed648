// Package sheets lays a committed ledger out as spreadsheet rows. Mirrors
// that write to tabular targets share this encoding.
package sheets

import (
	"fintrack/internal/core"
)

// Header is the first row of the transactions block.
var Header = []interface{}{"Type", "Amount", "Category"}

// TransactionRows returns the header followed by one row per transaction, in
// ledger order. Amounts are written as exact decimal text.
func TransactionRows(snap core.Snapshot) [][]interface{} {
	rows := make([][]interface{}, 0, len(snap.Transactions)+1)
	rows = append(rows, Header)
	for _, t := range snap.Transactions {
		rows = append(rows, []interface{}{t.Kind.String(), core.AmountText(t.Amount), t.Category.String()})
	}
	return rows
}

// BalanceRows returns the balance report and the per-category expense
// totals as label/value pairs, rounded for display.
func BalanceRows(snap core.Snapshot) [][]interface{} {
	rows := [][]interface{}{
		{"Income", core.FormatAmount(snap.Balance.Income)},
		{"Expense", core.FormatAmount(snap.Balance.Expense)},
		{"Balance", core.FormatAmount(snap.Balance.Net)},
	}
	if len(snap.ByCategory) > 0 {
		rows = append(rows, []interface{}{"", ""}, []interface{}{"Expense by category", ""})
		for _, c := range snap.ByCategory {
			rows = append(rows, []interface{}{c.Category.String(), core.FormatAmount(c.Amount)})
		}
	}
	return rows
}
