package services

import (
	"context"
	"testing"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
	"gamerit/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestTradingService() (interfaces.TradingService, *testhelpers.MockPlayerRepository, *testhelpers.MockStockRepository, *testhelpers.MockPortfolioRepository, *testhelpers.MockBalanceHistoryRepository, *testhelpers.MockEventPublisher) {
	config.SetTestConfig(config.NewTestConfig())

	mockPlayerRepo := new(testhelpers.MockPlayerRepository)
	mockStockRepo := new(testhelpers.MockStockRepository)
	mockPortfolioRepo := new(testhelpers.MockPortfolioRepository)
	mockBalanceHistoryRepo := new(testhelpers.MockBalanceHistoryRepository)
	mockEventPublisher := new(testhelpers.MockEventPublisher)

	service := NewTradingService(mockPlayerRepo, mockStockRepo, mockPortfolioRepo, mockBalanceHistoryRepo, mockEventPublisher)
	return service, mockPlayerRepo, mockStockRepo, mockPortfolioRepo, mockBalanceHistoryRepo, mockEventPublisher
}

func activeStock(id uuid.UUID, keyword string, value int64) *entities.MemeStock {
	return &entities.MemeStock{
		ID:           id,
		Keyword:      keyword,
		CurrentValue: value,
		Active:       true,
	}
}

func TestTradingService_BuyStock(t *testing.T) {
	ctx := context.Background()
	stockID := uuid.New()

	t.Run("buys whole shares and debits only their cost", func(t *testing.T) {
		service, playerRepo, stockRepo, portfolioRepo, historyRepo, publisher := createTestTradingService()

		stockRepo.On("GetByID", ctx, stockID).Return(activeStock(stockID, "doge", 50), nil)
		// 120 chips at value 50 buys 2 shares for 100; 20 chips stay put.
		playerRepo.On("AdjustBalance", ctx, "t2_abc", int64(-100)).Return(int64(900), nil)
		portfolioRepo.On("GetByPlayerAndStock", ctx, "t2_abc", stockID).Return(nil, nil)
		portfolioRepo.On("Create", ctx, mock.MatchedBy(func(p *entities.PlayerPortfolio) bool {
			return p.Shares == 2 && p.AvgBuyPrice == 50.0
		})).Return(nil)
		historyRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
			return h.TransactionType == entities.TransactionTypeStockBuy && h.ChangeAmount == -100
		})).Return(nil)
		publisher.On("Publish", mock.Anything).Return(nil)

		result, err := service.BuyStock(ctx, "t2_abc", stockID, 120)
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Shares)
		assert.Equal(t, int64(100), result.Chips)
		assert.Equal(t, int64(900), result.NewBalance)

		portfolioRepo.AssertExpectations(t)
	})

	t.Run("re-weights cost basis on subsequent buys", func(t *testing.T) {
		service, playerRepo, stockRepo, portfolioRepo, historyRepo, publisher := createTestTradingService()

		stockRepo.On("GetByID", ctx, stockID).Return(activeStock(stockID, "doge", 60), nil)
		playerRepo.On("AdjustBalance", ctx, "t2_abc", int64(-120)).Return(int64(700), nil)
		portfolioRepo.On("GetByPlayerAndStock", ctx, "t2_abc", stockID).Return(&entities.PlayerPortfolio{
			ID: 5, PlayerID: "t2_abc", StockID: stockID, Shares: 2, AvgBuyPrice: 40,
		}, nil)
		// (2*40 + 2*60) / 4 = 50
		portfolioRepo.On("UpdatePosition", ctx, int64(5), int64(4), 50.0).Return(nil)
		historyRepo.On("Record", ctx, mock.Anything).Return(nil)
		publisher.On("Publish", mock.Anything).Return(nil)

		_, err := service.BuyStock(ctx, "t2_abc", stockID, 130)
		require.NoError(t, err)
		portfolioRepo.AssertExpectations(t)
	})

	t.Run("rejects spends that buy no shares", func(t *testing.T) {
		service, playerRepo, stockRepo, _, _, _ := createTestTradingService()

		stockRepo.On("GetByID", ctx, stockID).Return(activeStock(stockID, "doge", 50), nil)

		_, err := service.BuyStock(ctx, "t2_abc", stockID, 49)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
		playerRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive stocks", func(t *testing.T) {
		service, _, stockRepo, _, _, _ := createTestTradingService()

		stock := activeStock(stockID, "doge", 50)
		stock.Active = false
		stockRepo.On("GetByID", ctx, stockID).Return(stock, nil)

		_, err := service.BuyStock(ctx, "t2_abc", stockID, 100)
		assert.ErrorIs(t, err, entities.ErrStockNotActive)
	})
}

func TestTradingService_SellStock(t *testing.T) {
	ctx := context.Background()
	stockID := uuid.New()

	t.Run("credits proceeds and reports realized profit", func(t *testing.T) {
		service, playerRepo, stockRepo, portfolioRepo, historyRepo, publisher := createTestTradingService()

		stockRepo.On("GetByID", ctx, stockID).Return(activeStock(stockID, "doge", 80), nil)
		portfolioRepo.On("GetByPlayerAndStock", ctx, "t2_abc", stockID).Return(&entities.PlayerPortfolio{
			ID: 9, PlayerID: "t2_abc", StockID: stockID, Shares: 5, AvgBuyPrice: 50,
		}, nil)
		portfolioRepo.On("UpdatePosition", ctx, int64(9), int64(2), 50.0).Return(nil)
		playerRepo.On("AdjustBalance", ctx, "t2_abc", int64(240)).Return(int64(1240), nil)
		historyRepo.On("Record", ctx, mock.MatchedBy(func(h *entities.BalanceHistory) bool {
			return h.TransactionType == entities.TransactionTypeStockSell && h.ChangeAmount == 240
		})).Return(nil)
		// Profit 3*(80-50)=90 awards 0 XP chunks short of 100? No: 90 < 100.
		publisher.On("Publish", mock.Anything).Return(nil)

		result, err := service.SellStock(ctx, "t2_abc", stockID, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(240), result.Chips)
		assert.Equal(t, int64(90), result.ProfitLoss)
		assert.Equal(t, int64(1240), result.NewBalance)

		// 90 chips of profit is below one full XP chunk.
		playerRepo.AssertNotCalled(t, "UpdateProgression", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("awards XP on large realized profits", func(t *testing.T) {
		service, playerRepo, stockRepo, portfolioRepo, historyRepo, publisher := createTestTradingService()

		stockRepo.On("GetByID", ctx, stockID).Return(activeStock(stockID, "gme", 100), nil)
		portfolioRepo.On("GetByPlayerAndStock", ctx, "t2_abc", stockID).Return(&entities.PlayerPortfolio{
			ID: 9, PlayerID: "t2_abc", StockID: stockID, Shares: 10, AvgBuyPrice: 40,
		}, nil)
		portfolioRepo.On("UpdatePosition", ctx, int64(9), int64(0), 40.0).Return(nil)
		playerRepo.On("AdjustBalance", ctx, "t2_abc", int64(1000)).Return(int64(2000), nil)
		historyRepo.On("Record", ctx, mock.Anything).Return(nil)
		// Profit 10*(100-40)=600 -> 6 chunks -> 60 XP.
		playerRepo.On("GetByRedditID", ctx, "t2_abc").Return(&entities.Player{
			RedditID: "t2_abc", XP: 950, Level: 1,
		}, nil)
		playerRepo.On("UpdateProgression", ctx, "t2_abc", int64(1010), 2).Return(nil)
		publisher.On("Publish", mock.Anything).Return(nil)

		result, err := service.SellStock(ctx, "t2_abc", stockID, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(600), result.ProfitLoss)
		playerRepo.AssertExpectations(t)
	})

	t.Run("rejects selling more shares than owned", func(t *testing.T) {
		service, playerRepo, stockRepo, portfolioRepo, _, _ := createTestTradingService()

		stockRepo.On("GetByID", ctx, stockID).Return(activeStock(stockID, "doge", 50), nil)
		portfolioRepo.On("GetByPlayerAndStock", ctx, "t2_abc", stockID).Return(&entities.PlayerPortfolio{
			ID: 9, Shares: 2, AvgBuyPrice: 50,
		}, nil)

		_, err := service.SellStock(ctx, "t2_abc", stockID, 3)
		assert.ErrorIs(t, err, entities.ErrInsufficientShares)
		playerRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("delisted stocks can still be sold", func(t *testing.T) {
		service, playerRepo, stockRepo, portfolioRepo, historyRepo, publisher := createTestTradingService()

		stock := activeStock(stockID, "doge", 50)
		stock.Active = false
		stockRepo.On("GetByID", ctx, stockID).Return(stock, nil)
		portfolioRepo.On("GetByPlayerAndStock", ctx, "t2_abc", stockID).Return(&entities.PlayerPortfolio{
			ID: 9, Shares: 2, AvgBuyPrice: 50,
		}, nil)
		portfolioRepo.On("UpdatePosition", ctx, int64(9), int64(0), 50.0).Return(nil)
		playerRepo.On("AdjustBalance", ctx, "t2_abc", int64(100)).Return(int64(1100), nil)
		historyRepo.On("Record", ctx, mock.Anything).Return(nil)
		publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
			trade, ok := e.(events.TradeExecutedEvent)
			return !ok || trade.Side == "sell"
		})).Return(nil)

		_, err := service.SellStock(ctx, "t2_abc", stockID, 2)
		require.NoError(t, err)
	})
}
