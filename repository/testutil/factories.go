package testutil

import (
	"time"

	"gamerit/domain/entities"

	"github.com/google/uuid"
)

// CreateTestRound creates an active test round with default values
func CreateTestRound() *entities.Round {
	return &entities.Round{
		ID:     uuid.New(),
		Status: entities.RoundStatusActive,
		PostA: entities.RoundPost{
			PostID:       "p_" + uuid.NewString()[:8],
			Title:        "My cat did a thing",
			Author:       "catposter",
			Subreddit:    "aww",
			InitialScore: 1000,
			FinalScore:   1000,
			Exists:       true,
		},
		PostB: entities.RoundPost{
			PostID:       "p_" + uuid.NewString()[:8],
			Title:        "Speedrun world record",
			Author:       "gamer",
			Subreddit:    "gaming",
			InitialScore: 800,
			FinalScore:   800,
			Exists:       true,
		},
		CreatedAt: time.Now().UTC(),
	}
}

// CreateTestStock creates an active test stock with default values
func CreateTestStock(keyword string, value int64) *entities.MemeStock {
	now := time.Now().UTC()
	return &entities.MemeStock{
		ID:           uuid.New(),
		Keyword:      keyword,
		CurrentValue: value,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(playerID string, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		PlayerID:        playerID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
