package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
	"gamerit/domain/utils"
)

// xpPerProfitChunk XP is awarded for every profitChunkSize chips of realized
// profit on a sell.
const (
	xpPerProfitChunk = int64(10)
	profitChunkSize  = int64(100)
)

type tradingService struct {
	playerRepo         interfaces.PlayerRepository
	stockRepo          interfaces.StockRepository
	portfolioRepo      interfaces.PortfolioRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewTradingService creates a new trading service
func NewTradingService(
	playerRepo interfaces.PlayerRepository,
	stockRepo interfaces.StockRepository,
	portfolioRepo interfaces.PortfolioRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.TradingService {
	return &tradingService{
		playerRepo:         playerRepo,
		stockRepo:          stockRepo,
		portfolioRepo:      portfolioRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

func (s *tradingService) BuyStock(ctx context.Context, playerID string, stockID uuid.UUID, chipsToSpend int64) (*interfaces.TradeResult, error) {
	if chipsToSpend <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	stock, err := s.stockRepo.GetByID(ctx, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s %w", stockID, entities.ErrNotFound)
	}
	if !stock.Active {
		return nil, entities.ErrStockNotActive
	}

	shares := entities.SharesForChips(chipsToSpend, stock.CurrentValue)
	if shares <= 0 {
		return nil, fmt.Errorf("%w: %d chips buys no shares at value %d", entities.ErrInvalidAmount, chipsToSpend, stock.CurrentValue)
	}

	// Only whole-share cost is debited; the remainder stays with the player.
	cost := shares * stock.CurrentValue
	newBalance, err := s.playerRepo.AdjustBalance(ctx, playerID, -cost)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.portfolioRepo.GetByPlayerAndStock(ctx, playerID, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	if portfolio == nil {
		portfolio = &entities.PlayerPortfolio{
			PlayerID:    playerID,
			StockID:     stockID,
			Shares:      shares,
			AvgBuyPrice: float64(stock.CurrentValue),
		}
		if err := s.portfolioRepo.Create(ctx, portfolio); err != nil {
			return nil, fmt.Errorf("failed to create portfolio: %w", err)
		}
	} else {
		portfolio.ApplyBuy(shares, stock.CurrentValue)
		if err := s.portfolioRepo.UpdatePosition(ctx, portfolio.ID, portfolio.Shares, portfolio.AvgBuyPrice); err != nil {
			return nil, fmt.Errorf("failed to update portfolio: %w", err)
		}
	}

	if err := s.recordTrade(ctx, playerID, stock, entities.TransactionTypeStockBuy, -cost, newBalance, shares); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(events.TradeExecutedEvent{
		PlayerID: playerID,
		StockID:  stockID.String(),
		Keyword:  stock.Keyword,
		Side:     "buy",
		Shares:   shares,
		Chips:    cost,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish trade event: %w", err)
	}

	return &interfaces.TradeResult{
		Stock:      stock,
		Shares:     shares,
		Chips:      cost,
		NewBalance: newBalance,
	}, nil
}

func (s *tradingService) SellStock(ctx context.Context, playerID string, stockID uuid.UUID, sharesToSell int64) (*interfaces.TradeResult, error) {
	if sharesToSell <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	// Delisted stocks can still be sold: positions exit at the last value.
	stock, err := s.stockRepo.GetByID(ctx, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	if stock == nil {
		return nil, fmt.Errorf("stock %s %w", stockID, entities.ErrNotFound)
	}

	portfolio, err := s.portfolioRepo.GetByPlayerAndStock(ctx, playerID, stockID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	if portfolio == nil || portfolio.Shares < sharesToSell {
		return nil, entities.ErrInsufficientShares
	}

	proceeds := sharesToSell * stock.CurrentValue
	profitLoss := portfolio.ProfitLoss(sharesToSell, stock.CurrentValue)

	portfolio.ApplySell(sharesToSell)
	if err := s.portfolioRepo.UpdatePosition(ctx, portfolio.ID, portfolio.Shares, portfolio.AvgBuyPrice); err != nil {
		return nil, fmt.Errorf("failed to update portfolio: %w", err)
	}

	newBalance, err := s.playerRepo.AdjustBalance(ctx, playerID, proceeds)
	if err != nil {
		return nil, fmt.Errorf("failed to credit proceeds: %w", err)
	}

	if err := s.recordTrade(ctx, playerID, stock, entities.TransactionTypeStockSell, proceeds, newBalance, sharesToSell); err != nil {
		return nil, err
	}

	if profitLoss > 0 {
		if err := s.awardTradeXP(ctx, playerID, profitLoss); err != nil {
			log.WithError(err).WithField("player_id", playerID).Error("Failed to award trade XP")
		}
	}

	if err := s.eventPublisher.Publish(events.TradeExecutedEvent{
		PlayerID:   playerID,
		StockID:    stockID.String(),
		Keyword:    stock.Keyword,
		Side:       "sell",
		Shares:     sharesToSell,
		Chips:      proceeds,
		ProfitLoss: profitLoss,
	}); err != nil {
		return nil, fmt.Errorf("failed to publish trade event: %w", err)
	}

	return &interfaces.TradeResult{
		Stock:      stock,
		Shares:     sharesToSell,
		Chips:      proceeds,
		NewBalance: newBalance,
		ProfitLoss: profitLoss,
	}, nil
}

func (s *tradingService) GetPortfolio(ctx context.Context, playerID string) ([]*entities.PlayerPortfolio, error) {
	positions, err := s.portfolioRepo.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return positions, nil
}

func (s *tradingService) recordTrade(ctx context.Context, playerID string, stock *entities.MemeStock, txType entities.TransactionType, change, newBalance, shares int64) error {
	stockID := stock.ID.String()
	history := &entities.BalanceHistory{
		PlayerID:        playerID,
		BalanceBefore:   newBalance - change,
		BalanceAfter:    newBalance,
		ChangeAmount:    change,
		TransactionType: txType,
		TransactionMetadata: map[string]any{
			"stock_id": stockID,
			"keyword":  stock.Keyword,
			"shares":   shares,
			"value":    stock.CurrentValue,
		},
		RelatedID:   &stockID,
		RelatedType: relatedTypePtr(entities.RelatedTypeStock),
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	return nil
}

func (s *tradingService) awardTradeXP(ctx context.Context, playerID string, profit int64) error {
	xp := profit / profitChunkSize * xpPerProfitChunk
	if xp <= 0 {
		return nil
	}

	player, err := s.playerRepo.GetByRedditID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return fmt.Errorf("player %s %w", playerID, entities.ErrNotFound)
	}

	newXP := player.XP + xp
	return s.playerRepo.UpdateProgression(ctx, playerID, newXP, entities.LevelForXP(newXP))
}
