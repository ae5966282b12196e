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

const stockColumns = `id, keyword, current_value, active, created_at, updated_at`

type stockRepository struct {
	q Queryable
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *database.DB) interfaces.StockRepository {
	return &stockRepository{q: db.Pool}
}

func newStockRepositoryWithTx(tx Queryable) interfaces.StockRepository {
	return &stockRepository{q: tx}
}

func scanStock(row pgx.Row) (*entities.MemeStock, error) {
	var stock entities.MemeStock
	err := row.Scan(
		&stock.ID,
		&stock.Keyword,
		&stock.CurrentValue,
		&stock.Active,
		&stock.CreatedAt,
		&stock.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *stockRepository) Create(ctx context.Context, stock *entities.MemeStock) error {
	query := `
		INSERT INTO meme_stocks (id, keyword, current_value, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.q.Exec(ctx, query,
		stock.ID,
		stock.Keyword,
		stock.CurrentValue,
		stock.Active,
		stock.CreatedAt,
		stock.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}
	return nil
}

func (r *stockRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.MemeStock, error) {
	query := fmt.Sprintf(`SELECT %s FROM meme_stocks WHERE id = $1`, stockColumns)

	stock, err := scanStock(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return stock, nil
}

func (r *stockRepository) GetActive(ctx context.Context) ([]*entities.MemeStock, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM meme_stocks
		WHERE active
		ORDER BY current_value DESC, keyword`, stockColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*entities.MemeStock
	for rows.Next() {
		stock, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, stock)
	}
	return stocks, rows.Err()
}

func (r *stockRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM meme_stocks WHERE active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active stocks: %w", err)
	}
	return count, nil
}

func (r *stockRepository) UpdateValue(ctx context.Context, id uuid.UUID, value int64, updatedAt time.Time) error {
	query := `UPDATE meme_stocks SET current_value = $1, updated_at = $2 WHERE id = $3`

	tag, err := r.q.Exec(ctx, query, value, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update stock value: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock %s not found", id)
	}
	return nil
}

func (r *stockRepository) Touch(ctx context.Context, id uuid.UUID, updatedAt time.Time) error {
	query := `UPDATE meme_stocks SET updated_at = $1 WHERE id = $2`

	if _, err := r.q.Exec(ctx, query, updatedAt, id); err != nil {
		return fmt.Errorf("failed to touch stock: %w", err)
	}
	return nil
}

func (r *stockRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE meme_stocks SET active = FALSE, updated_at = NOW() WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock %s not found", id)
	}
	return nil
}

func (r *stockRepository) AppendHistory(ctx context.Context, point *entities.PricePoint) error {
	query := `INSERT INTO meme_stock_history (stock_id, value, recorded_at) VALUES ($1, $2, $3)`

	if _, err := r.q.Exec(ctx, query, point.StockID, point.Value, point.RecordedAt); err != nil {
		return fmt.Errorf("failed to append stock history: %w", err)
	}
	return nil
}

func (r *stockRepository) GetHistory(ctx context.Context, stockID uuid.UUID, limit int) ([]*entities.PricePoint, error) {
	// Most recent points first, then flipped, so LIMIT trims the oldest.
	query := `
		SELECT stock_id, value, recorded_at FROM (
			SELECT stock_id, value, recorded_at
			FROM meme_stock_history
			WHERE stock_id = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at`

	rows, err := r.q.Query(ctx, query, stockID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock history: %w", err)
	}
	defer rows.Close()

	var points []*entities.PricePoint
	for rows.Next() {
		var point entities.PricePoint
		if err := rows.Scan(&point.StockID, &point.Value, &point.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, &point)
	}
	return points, rows.Err()
}
