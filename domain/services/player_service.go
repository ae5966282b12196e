package services

import (
	"context"
	"fmt"
	"time"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
	"gamerit/domain/utils"
)

type playerService struct {
	playerRepo         interfaces.PlayerRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewPlayerService creates a new player service
func NewPlayerService(playerRepo interfaces.PlayerRepository, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher) interfaces.PlayerService {
	return &playerService{
		playerRepo:         playerRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *playerService) GetOrCreate(ctx context.Context, redditID, username string) (*entities.Player, error) {
	player, err := s.playerRepo.GetByRedditID(ctx, redditID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player != nil {
		return player, nil
	}

	cfg := config.Get()
	player, err = s.playerRepo.Create(ctx, redditID, username, cfg.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	history := &entities.BalanceHistory{
		PlayerID:        redditID,
		BalanceBefore:   0,
		BalanceAfter:    cfg.StartingBalance,
		ChangeAmount:    cfg.StartingBalance,
		TransactionType: entities.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	return player, nil
}

func (s *playerService) ClaimWelfare(ctx context.Context, redditID string) (*entities.Player, error) {
	player, err := s.playerRepo.GetByRedditID(ctx, redditID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %s %w", redditID, entities.ErrNotFound)
	}

	cfg := config.Get()
	now := time.Now().UTC()
	if !player.WelfareEligible(cfg.WelfareThreshold, cfg.WelfareCooldown, now) {
		return nil, entities.ErrWelfareNotEligible
	}

	newBalance, err := s.playerRepo.AdjustBalance(ctx, redditID, cfg.WelfareAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit welfare: %w", err)
	}
	if err := s.playerRepo.SetWelfareClaimedAt(ctx, redditID, now); err != nil {
		return nil, fmt.Errorf("failed to record welfare claim time: %w", err)
	}

	history := &entities.BalanceHistory{
		PlayerID:        redditID,
		BalanceBefore:   newBalance - cfg.WelfareAmount,
		BalanceAfter:    newBalance,
		ChangeAmount:    cfg.WelfareAmount,
		TransactionType: entities.TransactionTypeWelfare,
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record welfare claim: %w", err)
	}

	player.Balance = newBalance
	player.LastWelfareAt = &now
	return player, nil
}

func (s *playerService) AwardXP(ctx context.Context, redditID string, amount int64) (*entities.Player, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	player, err := s.playerRepo.GetByRedditID(ctx, redditID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %s %w", redditID, entities.ErrNotFound)
	}

	player.XP += amount
	player.Level = entities.LevelForXP(player.XP)
	if err := s.playerRepo.UpdateProgression(ctx, redditID, player.XP, player.Level); err != nil {
		return nil, fmt.Errorf("failed to update progression: %w", err)
	}

	return player, nil
}

func (s *playerService) AddMetaMinutes(ctx context.Context, redditID string, delta int64) (int64, error) {
	total, err := s.playerRepo.AddMetaMinutes(ctx, redditID, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust meta minutes: %w", err)
	}
	return total, nil
}

func (s *playerService) GetLeaderboard(ctx context.Context, limit int) ([]*entities.Player, error) {
	players, err := s.playerRepo.GetTopByBalance(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return players, nil
}
