package entities

import (
	"time"

	"github.com/google/uuid"
)

// Bet represents a player's wager on one side of a round. The stake is
// debited at placement; Payout stays nil until the round settles.
type Bet struct {
	ID               int64     `db:"id"`
	PlayerID         string    `db:"player_id"`
	RoundID          uuid.UUID `db:"round_id"`
	Side             RoundSide `db:"side"`
	Amount           int64     `db:"amount"`
	Payout           *int64    `db:"payout"`
	BalanceHistoryID *int64    `db:"balance_history_id"`
	CreatedAt        time.Time `db:"created_at"`
}

// IsSettled reports whether the bet has been paid out (or zeroed)
func (b *Bet) IsSettled() bool {
	return b.Payout != nil
}

// Won reports whether the bet landed on the winning side of a settled round
func (b *Bet) Won() bool {
	return b.Payout != nil && *b.Payout > 0
}

// WinPayout returns the amount a winning bet is credited: double the stake
func (b *Bet) WinPayout() int64 {
	return b.Amount * 2
}

// NetProfit returns the net chip change from this bet once settled
func (b *Bet) NetProfit() int64 {
	if b.Payout == nil {
		return 0
	}
	return *b.Payout - b.Amount
}

// BetStats aggregates a player's betting record
type BetStats struct {
	TotalBets    int64
	TotalWins    int64
	TotalLosses  int64
	TotalWagered int64
	TotalWon     int64
	BiggestWin   int64
}
