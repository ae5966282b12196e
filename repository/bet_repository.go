package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gamerit/database"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
)

const betColumns = `id, player_id, round_id, side, amount, payout, balance_history_id, created_at`

type betRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) interfaces.BetRepository {
	return &betRepository{q: db.Pool}
}

func newBetRepositoryWithTx(tx Queryable) interfaces.BetRepository {
	return &betRepository{q: tx}
}

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.PlayerID,
		&bet.RoundID,
		&bet.Side,
		&bet.Amount,
		&bet.Payout,
		&bet.BalanceHistoryID,
		&bet.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO bets (player_id, round_id, side, amount, balance_history_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		bet.PlayerID,
		bet.RoundID,
		bet.Side,
		bet.Amount,
		bet.BalanceHistoryID,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

func (r *betRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bets
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, betColumns)

	return r.queryBets(ctx, query, playerID, limit)
}

func (r *betRepository) GetByPlayerAndRound(ctx context.Context, playerID string, roundID uuid.UUID) ([]*entities.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bets
		WHERE player_id = $1 AND round_id = $2
		ORDER BY created_at`, betColumns)

	return r.queryBets(ctx, query, playerID, roundID)
}

func (r *betRepository) GetByRound(ctx context.Context, roundID uuid.UUID) ([]*entities.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bets
		WHERE round_id = $1
		ORDER BY created_at`, betColumns)

	return r.queryBets(ctx, query, roundID)
}

func (r *betRepository) SetPayout(ctx context.Context, betID int64, payout int64) error {
	query := `UPDATE bets SET payout = $1 WHERE id = $2`

	tag, err := r.q.Exec(ctx, query, payout, betID)
	if err != nil {
		return fmt.Errorf("failed to set payout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", betID)
	}
	return nil
}

func (r *betRepository) GetStats(ctx context.Context, playerID string) (*entities.BetStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE payout > 0),
			COUNT(*) FILTER (WHERE payout = 0),
			COALESCE(SUM(amount), 0),
			COALESCE(SUM(payout), 0),
			COALESCE(MAX(payout), 0)
		FROM bets
		WHERE player_id = $1`

	var stats entities.BetStats
	err := r.q.QueryRow(ctx, query, playerID).Scan(
		&stats.TotalBets,
		&stats.TotalWins,
		&stats.TotalLosses,
		&stats.TotalWagered,
		&stats.TotalWon,
		&stats.BiggestWin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats: %w", err)
	}
	return &stats, nil
}

func (r *betRepository) queryBets(ctx context.Context, query string, args ...any) ([]*entities.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}
