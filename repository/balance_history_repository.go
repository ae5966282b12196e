package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gamerit/database"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
)

type balanceHistoryRepository struct {
	q Queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) interfaces.BalanceHistoryRepository {
	return &balanceHistoryRepository{q: db.Pool}
}

func newBalanceHistoryRepositoryWithTx(tx Queryable) interfaces.BalanceHistoryRepository {
	return &balanceHistoryRepository{q: tx}
}

func (r *balanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	var metadata []byte
	if history.TransactionMetadata != nil {
		var err error
		metadata, err = json.Marshal(history.TransactionMetadata)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
	}

	query := `
		INSERT INTO balance_history (
			player_id, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_id, related_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.q.QueryRow(ctx, query,
		history.PlayerID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		metadata,
		history.RelatedID,
		history.RelatedType,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}
	return nil
}

func (r *balanceHistoryRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.BalanceHistory, error) {
	query := `
		SELECT id, player_id, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var entries []*entities.BalanceHistory
	for rows.Next() {
		var entry entities.BalanceHistory
		var metadata []byte
		err := rows.Scan(
			&entry.ID,
			&entry.PlayerID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&metadata,
			&entry.RelatedID,
			&entry.RelatedType,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}
