package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"gamerit/database"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
)

const playerColumns = `reddit_id, username, balance, xp, level, meta_minutes, last_welfare_at, created_at, updated_at`

type playerRepository struct {
	q Queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) interfaces.PlayerRepository {
	return &playerRepository{q: db.Pool}
}

func newPlayerRepositoryWithTx(tx Queryable) interfaces.PlayerRepository {
	return &playerRepository{q: tx}
}

func scanPlayer(row pgx.Row) (*entities.Player, error) {
	var player entities.Player
	err := row.Scan(
		&player.RedditID,
		&player.Username,
		&player.Balance,
		&player.XP,
		&player.Level,
		&player.MetaMinutes,
		&player.LastWelfareAt,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *playerRepository) GetByRedditID(ctx context.Context, redditID string) (*entities.Player, error) {
	query := fmt.Sprintf(`SELECT %s FROM players WHERE reddit_id = $1`, playerColumns)

	player, err := scanPlayer(r.q.QueryRow(ctx, query, redditID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

func (r *playerRepository) Create(ctx context.Context, redditID, username string, initialBalance int64) (*entities.Player, error) {
	query := fmt.Sprintf(`
		INSERT INTO players (reddit_id, username, balance)
		VALUES ($1, $2, $3)
		RETURNING %s`, playerColumns)

	player, err := scanPlayer(r.q.QueryRow(ctx, query, redditID, username, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// AdjustBalance applies the delta and the sufficient-funds check in a single
// statement, so concurrent debits can never take the balance negative.
func (r *playerRepository) AdjustBalance(ctx context.Context, redditID string, delta int64) (int64, error) {
	query := `
		UPDATE players
		SET balance = balance + $1, updated_at = NOW()
		WHERE reddit_id = $2 AND balance + $1 >= 0
		RETURNING balance`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, delta, redditID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, entities.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return newBalance, nil
}

func (r *playerRepository) UpdateProgression(ctx context.Context, redditID string, xp int64, level int) error {
	query := `
		UPDATE players
		SET xp = $1, level = $2, updated_at = NOW()
		WHERE reddit_id = $3`

	tag, err := r.q.Exec(ctx, query, xp, level, redditID)
	if err != nil {
		return fmt.Errorf("failed to update progression: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("player %s not found", redditID)
	}
	return nil
}

func (r *playerRepository) AddMetaMinutes(ctx context.Context, redditID string, delta int64) (int64, error) {
	query := `
		UPDATE players
		SET meta_minutes = GREATEST(meta_minutes + $1, 0), updated_at = NOW()
		WHERE reddit_id = $2
		RETURNING meta_minutes`

	var total int64
	err := r.q.QueryRow(ctx, query, delta, redditID).Scan(&total)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("player %s not found", redditID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust meta minutes: %w", err)
	}
	return total, nil
}

func (r *playerRepository) SetWelfareClaimedAt(ctx context.Context, redditID string, claimedAt time.Time) error {
	query := `
		UPDATE players
		SET last_welfare_at = $1, updated_at = NOW()
		WHERE reddit_id = $2`

	if _, err := r.q.Exec(ctx, query, claimedAt, redditID); err != nil {
		return fmt.Errorf("failed to set welfare claim time: %w", err)
	}
	return nil
}

func (r *playerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*entities.Player, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM players
		ORDER BY balance DESC, reddit_id
		LIMIT $1`, playerColumns)

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var players []*entities.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	return players, rows.Err()
}
