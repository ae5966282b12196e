package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
	"gamerit/domain/utils"
)

type settlementService struct {
	roundRepo          interfaces.RoundRepository
	betRepo            interfaces.BetRepository
	playerRepo         interfaces.PlayerRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	roundRepo interfaces.RoundRepository,
	betRepo interfaces.BetRepository,
	playerRepo interfaces.PlayerRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.SettlementService {
	return &settlementService{
		roundRepo:          roundRepo,
		betRepo:            betRepo,
		playerRepo:         playerRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *settlementService) SettleRound(ctx context.Context, roundID uuid.UUID) (*interfaces.SettlementResult, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round %s %w", roundID, entities.ErrNotFound)
	}

	winner := round.ComputeWinner()

	// The status transition is guarded in SQL: only the first caller to
	// flip active -> finished proceeds to pay out.
	claimed, err := s.roundRepo.Finish(ctx, roundID, winner, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to finish round: %w", err)
	}
	if !claimed {
		log.WithField("round_id", roundID).Info("Round already settled, skipping")
		storedWinner := winner
		if round.Winner != nil {
			storedWinner = *round.Winner
		}
		return &interfaces.SettlementResult{Round: round, Winner: storedWinner}, nil
	}

	bets, err := s.betRepo.GetByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round bets: %w", err)
	}

	result := &interfaces.SettlementResult{
		Round:  round,
		Winner: winner,
	}
	roundIDStr := roundID.String()

	for _, bet := range bets {
		payout := int64(0)
		if bet.Side == winner {
			payout = bet.WinPayout()
			newBalance, err := s.playerRepo.AdjustBalance(ctx, bet.PlayerID, payout)
			if err != nil {
				return nil, fmt.Errorf("failed to credit payout for bet %d: %w", bet.ID, err)
			}

			history := &entities.BalanceHistory{
				PlayerID:        bet.PlayerID,
				BalanceBefore:   newBalance - payout,
				BalanceAfter:    newBalance,
				ChangeAmount:    payout,
				TransactionType: entities.TransactionTypeBetWin,
				TransactionMetadata: map[string]any{
					"round_id": roundIDStr,
					"bet_id":   bet.ID,
					"side":     string(bet.Side),
					"stake":    bet.Amount,
				},
				RelatedID:   &roundIDStr,
				RelatedType: relatedTypePtr(entities.RelatedTypeRound),
			}
			if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
				return nil, fmt.Errorf("failed to record payout for bet %d: %w", bet.ID, err)
			}

			result.WinnerCount++
			result.TotalPaid += payout
		}

		if err := s.betRepo.SetPayout(ctx, bet.ID, payout); err != nil {
			return nil, fmt.Errorf("failed to set payout for bet %d: %w", bet.ID, err)
		}
		result.BetsSettled++
	}

	if err := s.roundRepo.MarkSettled(ctx, roundID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to mark round settled: %w", err)
	}

	round.Status = entities.RoundStatusFinished
	round.Winner = &winner

	if err := s.eventPublisher.Publish(events.RoundSettledEvent{
		RoundID:     roundIDStr,
		Winner:      winner,
		BetsSettled: result.BetsSettled,
		TotalPaid:   result.TotalPaid,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish round settled event: %w", err)
	}

	return result, nil
}
