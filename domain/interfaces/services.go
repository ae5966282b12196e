package interfaces

import (
	"context"

	"gamerit/domain/entities"

	"github.com/google/uuid"
)

// PlayerService handles player lifecycle and progression
type PlayerService interface {
	// GetOrCreate upserts the player on Reddit login, granting the starting
	// balance on first sight
	GetOrCreate(ctx context.Context, redditID, username string) (*entities.Player, error)

	// ClaimWelfare grants the welfare stipend when the player is eligible
	ClaimWelfare(ctx context.Context, redditID string) (*entities.Player, error)

	// AwardXP adds XP and recomputes the level
	AwardXP(ctx context.Context, redditID string, amount int64) (*entities.Player, error)

	// AddMetaMinutes adjusts the secondary minigame currency
	AddMetaMinutes(ctx context.Context, redditID string, delta int64) (int64, error)

	// GetLeaderboard returns the top players by balance
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.Player, error)
}

// BettingService handles bet placement and reads
type BettingService interface {
	// PlaceBet validates and places a wager: the stake is debited and the
	// bet recorded in one transaction
	PlaceBet(ctx context.Context, playerID string, roundID uuid.UUID, side entities.RoundSide, amount int64) (*entities.Bet, error)

	// GetPlayerBets returns a player's bets, most recent first
	GetPlayerBets(ctx context.Context, playerID string, limit int) ([]*entities.Bet, error)
}

// SettlementResult summarizes one round settlement
type SettlementResult struct {
	Round       *entities.Round
	Winner      entities.RoundSide
	BetsSettled int
	WinnerCount int
	TotalPaid   int64
}

// SettlementService finishes expired rounds and pays out bets
type SettlementService interface {
	// SettleRound transitions the round to finished, computes the winner
	// from score deltas, and pays winning bets double their stake. Safe to
	// invoke concurrently; only the first caller settles.
	SettleRound(ctx context.Context, roundID uuid.UUID) (*SettlementResult, error)
}

// TradeResult summarizes one executed buy or sell
type TradeResult struct {
	Stock      *entities.MemeStock
	Shares     int64
	Chips      int64
	NewBalance int64
	ProfitLoss int64 // sells only
}

// TradingService executes meme stock trades against player balances
type TradingService interface {
	// BuyStock converts chips into whole shares at the current value
	BuyStock(ctx context.Context, playerID string, stockID uuid.UUID, chipsToSpend int64) (*TradeResult, error)

	// SellStock converts shares back into chips at the current value
	SellStock(ctx context.Context, playerID string, stockID uuid.UUID, sharesToSell int64) (*TradeResult, error)

	// GetPortfolio returns a player's open positions
	GetPortfolio(ctx context.Context, playerID string) ([]*entities.PlayerPortfolio, error)
}
