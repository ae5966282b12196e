package testhelpers

import (
	"context"
	"time"

	"gamerit/domain/entities"
	"gamerit/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) GetByRedditID(ctx context.Context, redditID string) (*entities.Player, error) {
	args := m.Called(ctx, redditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) Create(ctx context.Context, redditID, username string, initialBalance int64) (*entities.Player, error) {
	args := m.Called(ctx, redditID, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Player), args.Error(1)
}

func (m *MockPlayerRepository) AdjustBalance(ctx context.Context, redditID string, delta int64) (int64, error) {
	args := m.Called(ctx, redditID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) UpdateProgression(ctx context.Context, redditID string, xp int64, level int) error {
	args := m.Called(ctx, redditID, xp, level)
	return args.Error(0)
}

func (m *MockPlayerRepository) AddMetaMinutes(ctx context.Context, redditID string, delta int64) (int64, error) {
	args := m.Called(ctx, redditID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlayerRepository) SetWelfareClaimedAt(ctx context.Context, redditID string, claimedAt time.Time) error {
	args := m.Called(ctx, redditID, claimedAt)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetTopByBalance(ctx context.Context, limit int) ([]*entities.Player, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Player), args.Error(1)
}

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Create(ctx context.Context, round *entities.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetByIDForShare(ctx context.Context, id uuid.UUID) (*entities.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetActive(ctx context.Context) ([]*entities.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRoundRepository) GetRecent(ctx context.Context, limit int) ([]*entities.Round, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) GetFinished(ctx context.Context, limit int) ([]*entities.Round, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Round), args.Error(1)
}

func (m *MockRoundRepository) UpdateScores(ctx context.Context, id uuid.UUID, postA, postB entities.RoundPost) error {
	args := m.Called(ctx, id, postA, postB)
	return args.Error(0)
}

func (m *MockRoundRepository) Finish(ctx context.Context, id uuid.UUID, winner entities.RoundSide, finishedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, winner, finishedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoundRepository) MarkSettled(ctx context.Context, id uuid.UUID, settledAt time.Time) error {
	args := m.Called(ctx, id, settledAt)
	return args.Error(0)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *entities.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.Bet, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByPlayerAndRound(ctx context.Context, playerID string, roundID uuid.UUID) ([]*entities.Bet, error) {
	args := m.Called(ctx, playerID, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByRound(ctx context.Context, roundID uuid.UUID) ([]*entities.Bet, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) SetPayout(ctx context.Context, betID int64, payout int64) error {
	args := m.Called(ctx, betID, payout)
	return args.Error(0)
}

func (m *MockBetRepository) GetStats(ctx context.Context, playerID string) (*entities.BetStats, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BetStats), args.Error(1)
}

// MockStockRepository is a mock implementation of StockRepository
type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) Create(ctx context.Context, stock *entities.MemeStock) error {
	args := m.Called(ctx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.MemeStock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MemeStock), args.Error(1)
}

func (m *MockStockRepository) GetActive(ctx context.Context) ([]*entities.MemeStock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MemeStock), args.Error(1)
}

func (m *MockStockRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStockRepository) UpdateValue(ctx context.Context, id uuid.UUID, value int64, updatedAt time.Time) error {
	args := m.Called(ctx, id, value, updatedAt)
	return args.Error(0)
}

func (m *MockStockRepository) Touch(ctx context.Context, id uuid.UUID, updatedAt time.Time) error {
	args := m.Called(ctx, id, updatedAt)
	return args.Error(0)
}

func (m *MockStockRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStockRepository) AppendHistory(ctx context.Context, point *entities.PricePoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

func (m *MockStockRepository) GetHistory(ctx context.Context, stockID uuid.UUID, limit int) ([]*entities.PricePoint, error) {
	args := m.Called(ctx, stockID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PricePoint), args.Error(1)
}

// MockPortfolioRepository is a mock implementation of PortfolioRepository
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) GetByPlayerAndStock(ctx context.Context, playerID string, stockID uuid.UUID) (*entities.PlayerPortfolio, error) {
	args := m.Called(ctx, playerID, stockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlayerPortfolio), args.Error(1)
}

func (m *MockPortfolioRepository) Create(ctx context.Context, portfolio *entities.PlayerPortfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) UpdatePosition(ctx context.Context, id int64, shares int64, avgBuyPrice float64) error {
	args := m.Called(ctx, id, shares, avgBuyPrice)
	return args.Error(0)
}

func (m *MockPortfolioRepository) GetByPlayer(ctx context.Context, playerID string) ([]*entities.PlayerPortfolio, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PlayerPortfolio), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockJobLockRepository is a mock implementation of JobLockRepository
type MockJobLockRepository struct {
	mock.Mock
}

func (m *MockJobLockRepository) TryAcquire(ctx context.Context, job string) (bool, error) {
	args := m.Called(ctx, job)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
