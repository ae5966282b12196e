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

const portfolioColumns = `id, player_id, stock_id, shares, avg_buy_price, created_at, updated_at`

type portfolioRepository struct {
	q Queryable
}

// NewPortfolioRepository creates a new portfolio repository
func NewPortfolioRepository(db *database.DB) interfaces.PortfolioRepository {
	return &portfolioRepository{q: db.Pool}
}

func newPortfolioRepositoryWithTx(tx Queryable) interfaces.PortfolioRepository {
	return &portfolioRepository{q: tx}
}

func scanPortfolio(row pgx.Row) (*entities.PlayerPortfolio, error) {
	var portfolio entities.PlayerPortfolio
	err := row.Scan(
		&portfolio.ID,
		&portfolio.PlayerID,
		&portfolio.StockID,
		&portfolio.Shares,
		&portfolio.AvgBuyPrice,
		&portfolio.CreatedAt,
		&portfolio.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// GetByPlayerAndStock locks the position row so concurrent trades on the
// same position serialize inside their transactions.
func (r *portfolioRepository) GetByPlayerAndStock(ctx context.Context, playerID string, stockID uuid.UUID) (*entities.PlayerPortfolio, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM player_portfolios
		WHERE player_id = $1 AND stock_id = $2
		FOR UPDATE`, portfolioColumns)

	portfolio, err := scanPortfolio(r.q.QueryRow(ctx, query, playerID, stockID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return portfolio, nil
}

func (r *portfolioRepository) Create(ctx context.Context, portfolio *entities.PlayerPortfolio) error {
	query := `
		INSERT INTO player_portfolios (player_id, stock_id, shares, avg_buy_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		portfolio.PlayerID,
		portfolio.StockID,
		portfolio.Shares,
		portfolio.AvgBuyPrice,
	).Scan(&portfolio.ID, &portfolio.CreatedAt, &portfolio.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

func (r *portfolioRepository) UpdatePosition(ctx context.Context, id int64, shares int64, avgBuyPrice float64) error {
	query := `
		UPDATE player_portfolios
		SET shares = $1, avg_buy_price = $2, updated_at = NOW()
		WHERE id = $3`

	tag, err := r.q.Exec(ctx, query, shares, avgBuyPrice, id)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("portfolio %d not found", id)
	}
	return nil
}

func (r *portfolioRepository) GetByPlayer(ctx context.Context, playerID string) ([]*entities.PlayerPortfolio, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM player_portfolios
		WHERE player_id = $1 AND shares > 0
		ORDER BY created_at`, portfolioColumns)

	rows, err := r.q.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var portfolios []*entities.PlayerPortfolio
	for rows.Next() {
		portfolio, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, portfolio)
	}
	return portfolios, rows.Err()
}
