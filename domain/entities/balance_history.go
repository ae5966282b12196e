package entities

import (
	"time"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeBet   RelatedType = "bet"
	RelatedTypeRound RelatedType = "round"
	RelatedTypeStock RelatedType = "stock"
)

// BalanceHistory represents a historical chip balance change. Rows are
// append-only; the points ledger is reconstructable from them.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	PlayerID            string          `db:"player_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedID           *string         `db:"related_id"`
	RelatedType         *RelatedType    `db:"related_type"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsPositiveChange returns true if the change amount is positive
func (bh *BalanceHistory) IsPositiveChange() bool {
	return bh.ChangeAmount > 0
}

// IsConsistent verifies before + change == after
func (bh *BalanceHistory) IsConsistent() bool {
	return bh.BalanceBefore+bh.ChangeAmount == bh.BalanceAfter
}
