package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"
)

// CategoryTotal is one entry of the per-category expense summary.
type CategoryTotal struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// LedgerCommittedMessage announces a commit. Amounts travel as exact
// decimal text; consumers that need the entries read them from the store.
type LedgerCommittedMessage struct {
	CommitID    string          `json:"commit_id"`
	CommittedAt time.Time       `json:"committed_at"`
	Count       int             `json:"count"`
	Income      string          `json:"income"`
	Expense     string          `json:"expense"`
	Net         string          `json:"net"`
	ByCategory  []CategoryTotal `json:"by_category"`
}

// NewLedgerCommittedMessage builds the message for a committed snapshot
func NewLedgerCommittedMessage(snap core.Snapshot) *LedgerCommittedMessage {
	cats := make([]CategoryTotal, len(snap.ByCategory))
	for i, c := range snap.ByCategory {
		cats[i] = CategoryTotal{Category: c.Category.String(), Amount: core.AmountText(c.Amount)}
	}
	return &LedgerCommittedMessage{
		CommitID:    snap.ID,
		CommittedAt: snap.CommittedAt,
		Count:       len(snap.Transactions),
		Income:      core.AmountText(snap.Balance.Income),
		Expense:     core.AmountText(snap.Balance.Expense),
		Net:         core.AmountText(snap.Balance.Net),
		ByCategory:  cats,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerCommittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
