package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
	"gamerit/domain/utils"
)

type bettingService struct {
	playerRepo         interfaces.PlayerRepository
	roundRepo          interfaces.RoundRepository
	betRepo            interfaces.BetRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewBettingService creates a new betting service
func NewBettingService(
	playerRepo interfaces.PlayerRepository,
	roundRepo interfaces.RoundRepository,
	betRepo interfaces.BetRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.BettingService {
	return &bettingService{
		playerRepo:         playerRepo,
		roundRepo:          roundRepo,
		betRepo:            betRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *bettingService) PlaceBet(ctx context.Context, playerID string, roundID uuid.UUID, side entities.RoundSide, amount int64) (*entities.Bet, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}
	if !side.IsValid() {
		return nil, fmt.Errorf("invalid round side %q", side)
	}

	// The shared row lock keeps settlement from finishing the round while
	// this transaction is in flight, so a placed bet is always visible to
	// the settlement pass that pays it out.
	round, err := s.roundRepo.GetByIDForShare(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round %s %w", roundID, entities.ErrNotFound)
	}
	if !round.IsActive() {
		return nil, entities.ErrRoundNotActive
	}

	player, err := s.playerRepo.GetByRedditID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %s %w", playerID, entities.ErrNotFound)
	}

	if !config.Get().AllowRepeatBets {
		existing, err := s.betRepo.GetByPlayerAndRound(ctx, playerID, roundID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing bets: %w", err)
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("player %s already bet on round %s: %w", playerID, roundID, entities.ErrAlreadyBet)
		}
	}

	newBalance, err := s.playerRepo.AdjustBalance(ctx, playerID, -amount)
	if err != nil {
		return nil, err
	}

	roundIDStr := roundID.String()
	history := &entities.BalanceHistory{
		PlayerID:        playerID,
		BalanceBefore:   newBalance + amount,
		BalanceAfter:    newBalance,
		ChangeAmount:    -amount,
		TransactionType: entities.TransactionTypeBetPlaced,
		TransactionMetadata: map[string]any{
			"round_id": roundIDStr,
			"side":     string(side),
			"amount":   amount,
		},
		RelatedID:   &roundIDStr,
		RelatedType: relatedTypePtr(entities.RelatedTypeRound),
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record bet debit: %w", err)
	}

	bet := &entities.Bet{
		PlayerID:         playerID,
		RoundID:          roundID,
		Side:             side,
		Amount:           amount,
		BalanceHistoryID: &history.ID,
	}
	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		BetID:    bet.ID,
		PlayerID: playerID,
		RoundID:  roundIDStr,
		Side:     side,
		Amount:   amount,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish bet placed event: %w", err)
	}

	return bet, nil
}

func (s *bettingService) GetPlayerBets(ctx context.Context, playerID string, limit int) ([]*entities.Bet, error) {
	bets, err := s.betRepo.GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get player bets: %w", err)
	}
	return bets, nil
}

func relatedTypePtr(rt entities.RelatedType) *entities.RelatedType {
	return &rt
}
