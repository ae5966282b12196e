package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gamerit/database"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
)

const roundColumns = `id, status, winner,
	post_a_id, post_a_title, post_a_author, post_a_subreddit, post_a_initial_score, post_a_final_score, post_a_exists,
	post_b_id, post_b_title, post_b_author, post_b_subreddit, post_b_initial_score, post_b_final_score, post_b_exists,
	created_at, finished_at, settled_at`

type roundRepository struct {
	q Queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) interfaces.RoundRepository {
	return &roundRepository{q: db.Pool}
}

func newRoundRepositoryWithTx(tx Queryable) interfaces.RoundRepository {
	return &roundRepository{q: tx}
}

func scanRound(row pgx.Row) (*entities.Round, error) {
	var round entities.Round
	err := row.Scan(
		&round.ID,
		&round.Status,
		&round.Winner,
		&round.PostA.PostID,
		&round.PostA.Title,
		&round.PostA.Author,
		&round.PostA.Subreddit,
		&round.PostA.InitialScore,
		&round.PostA.FinalScore,
		&round.PostA.Exists,
		&round.PostB.PostID,
		&round.PostB.Title,
		&round.PostB.Author,
		&round.PostB.Subreddit,
		&round.PostB.InitialScore,
		&round.PostB.FinalScore,
		&round.PostB.Exists,
		&round.CreatedAt,
		&round.FinishedAt,
		&round.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepository) Create(ctx context.Context, round *entities.Round) error {
	query := `
		INSERT INTO game_rounds (
			id, status,
			post_a_id, post_a_title, post_a_author, post_a_subreddit, post_a_initial_score, post_a_final_score, post_a_exists,
			post_b_id, post_b_title, post_b_author, post_b_subreddit, post_b_initial_score, post_b_final_score, post_b_exists,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.q.Exec(ctx, query,
		round.ID,
		round.Status,
		round.PostA.PostID,
		round.PostA.Title,
		round.PostA.Author,
		round.PostA.Subreddit,
		round.PostA.InitialScore,
		round.PostA.FinalScore,
		round.PostA.Exists,
		round.PostB.PostID,
		round.PostB.Title,
		round.PostB.Author,
		round.PostB.Subreddit,
		round.PostB.InitialScore,
		round.PostB.FinalScore,
		round.PostB.Exists,
		round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

func (r *roundRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_rounds WHERE id = $1`, roundColumns)

	round, err := scanRound(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

func (r *roundRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM game_rounds WHERE id = $1 FOR SHARE`, roundColumns)

	round, err := scanRound(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round for share: %w", err)
	}
	return round, nil
}

func (r *roundRepository) GetActive(ctx context.Context) ([]*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM game_rounds
		WHERE status = 'active'
		ORDER BY created_at`, roundColumns)

	return r.queryRounds(ctx, query)
}

func (r *roundRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM game_rounds WHERE status = 'active'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active rounds: %w", err)
	}
	return count, nil
}

func (r *roundRepository) GetRecent(ctx context.Context, limit int) ([]*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM game_rounds
		ORDER BY created_at DESC
		LIMIT $1`, roundColumns)

	return r.queryRounds(ctx, query, limit)
}

func (r *roundRepository) GetFinished(ctx context.Context, limit int) ([]*entities.Round, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM game_rounds
		WHERE status = 'finished'
		ORDER BY finished_at DESC
		LIMIT $1`, roundColumns)

	return r.queryRounds(ctx, query, limit)
}

func (r *roundRepository) UpdateScores(ctx context.Context, id uuid.UUID, postA, postB entities.RoundPost) error {
	query := `
		UPDATE game_rounds
		SET post_a_final_score = $1, post_a_exists = $2,
		    post_b_final_score = $3, post_b_exists = $4
		WHERE id = $5`

	tag, err := r.q.Exec(ctx, query, postA.FinalScore, postA.Exists, postB.FinalScore, postB.Exists, id)
	if err != nil {
		return fmt.Errorf("failed to update scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round %s not found", id)
	}
	return nil
}

// Finish guards the status transition in SQL: with two concurrent settlers
// only one sees a row updated.
func (r *roundRepository) Finish(ctx context.Context, id uuid.UUID, winner entities.RoundSide, finishedAt time.Time) (bool, error) {
	query := `
		UPDATE game_rounds
		SET status = 'finished', winner = $1, finished_at = $2
		WHERE id = $3 AND status = 'active'`

	tag, err := r.q.Exec(ctx, query, winner, finishedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to finish round: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *roundRepository) MarkSettled(ctx context.Context, id uuid.UUID, settledAt time.Time) error {
	query := `UPDATE game_rounds SET settled_at = $1 WHERE id = $2`

	if _, err := r.q.Exec(ctx, query, settledAt, id); err != nil {
		return fmt.Errorf("failed to mark round settled: %w", err)
	}
	return nil
}

func (r *roundRepository) queryRounds(ctx context.Context, query string, args ...any) ([]*entities.Round, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*entities.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}
	return rounds, rows.Err()
}
