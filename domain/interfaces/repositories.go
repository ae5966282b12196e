package interfaces

import (
	"context"
	"time"

	"gamerit/domain/entities"
	"gamerit/domain/events"

	"github.com/google/uuid"
)

// PlayerRepository defines the interface for player data access
type PlayerRepository interface {
	// GetByRedditID retrieves a player by their Reddit ID
	GetByRedditID(ctx context.Context, redditID string) (*entities.Player, error)

	// Create creates a new player with the initial balance
	Create(ctx context.Context, redditID, username string, initialBalance int64) (*entities.Player, error)

	// AdjustBalance atomically applies a delta to a player's balance and
	// returns the new balance. A negative delta that would take the balance
	// below zero fails with entities.ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, redditID string, delta int64) (int64, error)

	// UpdateProgression sets a player's XP and level
	UpdateProgression(ctx context.Context, redditID string, xp int64, level int) error

	// AddMetaMinutes atomically adds to the secondary currency and returns the new total
	AddMetaMinutes(ctx context.Context, redditID string, delta int64) (int64, error)

	// SetWelfareClaimedAt records when the player last claimed welfare
	SetWelfareClaimedAt(ctx context.Context, redditID string, claimedAt time.Time) error

	// GetTopByBalance returns players ordered by balance for the leaderboard
	GetTopByBalance(ctx context.Context, limit int) ([]*entities.Player, error)
}

// RoundRepository defines the interface for betting round data access
type RoundRepository interface {
	// Create inserts a new round
	Create(ctx context.Context, round *entities.Round) error

	// GetByID retrieves a round by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Round, error)

	// GetByIDForShare retrieves a round holding a shared row lock for the
	// rest of the transaction. Bet placement reads the round this way so a
	// concurrent settlement cannot flip the status until the bet commits.
	GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Round, error)

	// GetActive returns all active rounds
	GetActive(ctx context.Context) ([]*entities.Round, error)

	// CountActive returns the number of active rounds
	CountActive(ctx context.Context) (int, error)

	// GetRecent returns the most recent rounds regardless of status, used to
	// build exclusion sets against repetition
	GetRecent(ctx context.Context, limit int) ([]*entities.Round, error)

	// GetFinished returns settled rounds, most recent first
	GetFinished(ctx context.Context, limit int) ([]*entities.Round, error)

	// UpdateScores writes back both posts' refreshed scores in one update
	UpdateScores(ctx context.Context, id uuid.UUID, postA, postB entities.RoundPost) error

	// Finish transitions the round active -> finished with the given winner.
	// Returns false when the round was already finished; the transition
	// happens at most once.
	Finish(ctx context.Context, id uuid.UUID, winner entities.RoundSide, finishedAt time.Time) (bool, error)

	// MarkSettled records that settlement has completed for the round
	MarkSettled(ctx context.Context, id uuid.UUID, settledAt time.Time) error
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create creates a new bet record
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByPlayer returns bets for a player, most recent first
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.Bet, error)

	// GetByPlayerAndRound returns a player's bets on a specific round
	GetByPlayerAndRound(ctx context.Context, playerID string, roundID uuid.UUID) ([]*entities.Bet, error)

	// GetByRound returns all bets on a round
	GetByRound(ctx context.Context, roundID uuid.UUID) ([]*entities.Bet, error)

	// SetPayout records the settled payout for a bet
	SetPayout(ctx context.Context, betID int64, payout int64) error

	// GetStats returns betting statistics for a player
	GetStats(ctx context.Context, playerID string) (*entities.BetStats, error)
}

// StockRepository defines the interface for meme stock data access
type StockRepository interface {
	// Create inserts a new stock
	Create(ctx context.Context, stock *entities.MemeStock) error

	// GetByID retrieves a stock by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*entities.MemeStock, error)

	// GetActive returns all active stocks
	GetActive(ctx context.Context) ([]*entities.MemeStock, error)

	// CountActive returns the number of active stocks
	CountActive(ctx context.Context) (int, error)

	// UpdateValue sets a stock's current value and refresh timestamp
	UpdateValue(ctx context.Context, id uuid.UUID, value int64, updatedAt time.Time) error

	// Touch refreshes only the updated_at timestamp, for stocks whose
	// keyword lost significance but survive until natural expiry
	Touch(ctx context.Context, id uuid.UUID, updatedAt time.Time) error

	// Deactivate permanently delists a stock
	Deactivate(ctx context.Context, id uuid.UUID) error

	// AppendHistory appends one point to the stock's value history
	AppendHistory(ctx context.Context, point *entities.PricePoint) error

	// GetHistory returns a stock's value history in chronological order
	GetHistory(ctx context.Context, stockID uuid.UUID, limit int) ([]*entities.PricePoint, error)
}

// PortfolioRepository defines the interface for player portfolio data access
type PortfolioRepository interface {
	// GetByPlayerAndStock retrieves a player's position in a stock, locking
	// the row for update within the current transaction. Returns nil when no
	// position exists.
	GetByPlayerAndStock(ctx context.Context, playerID string, stockID uuid.UUID) (*entities.PlayerPortfolio, error)

	// Create inserts a new position
	Create(ctx context.Context, portfolio *entities.PlayerPortfolio) error

	// UpdatePosition sets shares and average buy price together
	UpdatePosition(ctx context.Context, id int64, shares int64, avgBuyPrice float64) error

	// GetByPlayer returns a player's non-empty positions
	GetByPlayer(ctx context.Context, playerID string) ([]*entities.PlayerPortfolio, error)
}

// BalanceHistoryRepository defines the interface for chip ledger tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByPlayer returns balance history for a specific player
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.BalanceHistory, error)
}

// JobLockRepository guards periodic jobs against overlapping invocations
// across service instances
type JobLockRepository interface {
	// TryAcquire takes a transaction-scoped advisory lock for the named job.
	// Returns false when another instance holds it; the lock releases
	// automatically at commit or rollback.
	TryAcquire(ctx context.Context, job string) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers published events until the enclosing
// transaction resolves: Flush after commit, Discard after rollback.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
