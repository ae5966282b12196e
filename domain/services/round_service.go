package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
	"gamerit/reddit"
)

// RoundService manages the betting round pool.
type RoundService struct {
	roundRepo      interfaces.RoundRepository
	betRepo        interfaces.BetRepository
	eventPublisher interfaces.EventPublisher
}

// NewRoundService creates a new round service
func NewRoundService(roundRepo interfaces.RoundRepository, betRepo interfaces.BetRepository, eventPublisher interfaces.EventPublisher) *RoundService {
	return &RoundService{
		roundRepo:      roundRepo,
		betRepo:        betRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateRound opens a new round from a selected post pair. Returns
// ErrRoundPoolFull when the active pool is already at its ceiling.
func (s *RoundService) CreateRound(ctx context.Context, pair PostPair) (*entities.Round, error) {
	count, err := s.roundRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active rounds: %w", err)
	}
	if count >= config.Get().RoundCeiling {
		return nil, entities.ErrRoundPoolFull
	}

	now := time.Now().UTC()
	round := &entities.Round{
		ID:        uuid.New(),
		Status:    entities.RoundStatusActive,
		PostA:     roundPostFromReddit(pair.A),
		PostB:     roundPostFromReddit(pair.B),
		CreatedAt: now,
	}
	if err := s.roundRepo.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	if err := s.eventPublisher.Publish(events.RoundCreatedEvent{
		RoundID:    round.ID.String(),
		SubredditA: round.PostA.Subreddit,
		SubredditB: round.PostB.Subreddit,
		PostAID:    round.PostA.PostID,
		PostBID:    round.PostB.PostID,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish round created event: %w", err)
	}

	return round, nil
}

func roundPostFromReddit(p reddit.Post) entities.RoundPost {
	return entities.RoundPost{
		PostID:       p.ID,
		Title:        p.Title,
		Author:       p.Author,
		Subreddit:    p.Subreddit,
		InitialScore: p.Score,
		FinalScore:   p.Score,
		Exists:       true,
	}
}

// GetRound returns a single round by ID, or nil when not found.
func (s *RoundService) GetRound(ctx context.Context, id uuid.UUID) (*entities.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

// GetActiveRounds returns every round currently open for betting.
func (s *RoundService) GetActiveRounds(ctx context.Context) ([]*entities.Round, error) {
	rounds, err := s.roundRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active rounds: %w", err)
	}
	return rounds, nil
}

// GetPreviousRounds returns settled rounds, most recently finished first.
func (s *RoundService) GetPreviousRounds(ctx context.Context, limit int) ([]*entities.Round, error) {
	rounds, err := s.roundRepo.GetFinished(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get finished rounds: %w", err)
	}
	return rounds, nil
}

// GetRoundBets returns all bets placed on a round.
func (s *RoundService) GetRoundBets(ctx context.Context, roundID uuid.UUID) ([]*entities.Bet, error) {
	bets, err := s.betRepo.GetByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round bets: %w", err)
	}
	return bets, nil
}
