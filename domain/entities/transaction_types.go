package entities

// TransactionType represents the type of balance change
type TransactionType string

// All transaction types supported by the system
const (
	// Betting transactions
	TransactionTypeBetPlaced TransactionType = "bet_placed"
	TransactionTypeBetWin    TransactionType = "bet_win"

	// Meme stock transactions
	TransactionTypeStockBuy  TransactionType = "stock_buy"
	TransactionTypeStockSell TransactionType = "stock_sell"

	// System transactions
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeWelfare     TransactionType = "welfare"
	TransactionTypeAdminAdjust TransactionType = "admin_adjust"
)

// IsCredit returns true if the transaction type normally increases the balance
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypeBetWin ||
		tt == TransactionTypeStockSell ||
		tt == TransactionTypeInitial ||
		tt == TransactionTypeWelfare
}

// IsDebit returns true if the transaction type normally decreases the balance
func (tt TransactionType) IsDebit() bool {
	return tt == TransactionTypeBetPlaced ||
		tt == TransactionTypeStockBuy
}

// IsSystemGenerated returns true if the transaction type is system-generated
func (tt TransactionType) IsSystemGenerated() bool {
	return tt == TransactionTypeInitial ||
		tt == TransactionTypeWelfare ||
		tt == TransactionTypeAdminAdjust
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
