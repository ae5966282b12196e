package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
)

// MarketRefreshResult summarizes one market refresh pass.
type MarketRefreshResult struct {
	Repriced int
	Touched  int
	Delisted int
}

// MarketService maintains the meme stock market: repricing active stocks
// from keyword signals, delisting expired ones, and listing new stocks for
// newly significant keywords.
type MarketService struct {
	stockRepo      interfaces.StockRepository
	eventPublisher interfaces.EventPublisher
}

// NewMarketService creates a new market service
func NewMarketService(stockRepo interfaces.StockRepository, eventPublisher interfaces.EventPublisher) *MarketService {
	return &MarketService{
		stockRepo:      stockRepo,
		eventPublisher: eventPublisher,
	}
}

// RefreshValues walks every active stock once: expired stocks are delisted,
// stocks whose keyword still carries a significant signal are repriced, and
// the rest keep their value with only the refresh timestamp advanced.
func (s *MarketService) RefreshValues(ctx context.Context, signals map[string]*KeywordSignal, now time.Time) (*MarketRefreshResult, error) {
	stocks, err := s.stockRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active stocks: %w", err)
	}

	cfg := config.Get()
	result := &MarketRefreshResult{}

	for _, stock := range stocks {
		if stock.IsExpired(cfg.StockLifetime, now) {
			if err := s.stockRepo.Deactivate(ctx, stock.ID); err != nil {
				return nil, fmt.Errorf("failed to deactivate stock %s: %w", stock.Keyword, err)
			}
			if err := s.eventPublisher.Publish(events.StockDelistedEvent{
				StockID:   stock.ID.String(),
				Keyword:   stock.Keyword,
				LastValue: stock.CurrentValue,
			}); err != nil {
				return nil, fmt.Errorf("failed to publish stock delisted event: %w", err)
			}
			result.Delisted++
			continue
		}

		signal, ok := signals[stock.Keyword]
		if !ok || !signal.IsSignificant() {
			if err := s.stockRepo.Touch(ctx, stock.ID, now); err != nil {
				return nil, fmt.Errorf("failed to touch stock %s: %w", stock.Keyword, err)
			}
			result.Touched++
			continue
		}

		newValue := entities.StockValue(signal.TotalScore, signal.PostCount)
		if err := s.stockRepo.UpdateValue(ctx, stock.ID, newValue, now); err != nil {
			return nil, fmt.Errorf("failed to update stock %s: %w", stock.Keyword, err)
		}
		if err := s.stockRepo.AppendHistory(ctx, &entities.PricePoint{
			StockID:    stock.ID,
			Value:      newValue,
			RecordedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("failed to append history for stock %s: %w", stock.Keyword, err)
		}

		if newValue != stock.CurrentValue {
			if err := s.eventPublisher.Publish(events.StockPriceUpdatedEvent{
				StockID:  stock.ID.String(),
				Keyword:  stock.Keyword,
				OldValue: stock.CurrentValue,
				NewValue: newValue,
			}); err != nil {
				return nil, fmt.Errorf("failed to publish price update event: %w", err)
			}
		}
		result.Repriced++
	}

	return result, nil
}

// CreateStocks lists stocks for ranked keyword signals until the active
// ceiling is reached, skipping keywords that already have an active stock.
func (s *MarketService) CreateStocks(ctx context.Context, ranked []*KeywordSignal, now time.Time) ([]*entities.MemeStock, error) {
	count, err := s.stockRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active stocks: %w", err)
	}
	free := config.Get().StockCeiling - count
	if free <= 0 {
		return nil, nil
	}

	active, err := s.stockRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active stocks: %w", err)
	}
	listed := make(map[string]bool, len(active))
	for _, stock := range active {
		listed[stock.Keyword] = true
	}

	var created []*entities.MemeStock
	for _, signal := range ranked {
		if free <= 0 {
			break
		}
		if listed[signal.Keyword] {
			continue
		}

		stock := &entities.MemeStock{
			ID:           uuid.New(),
			Keyword:      signal.Keyword,
			CurrentValue: entities.StockValue(signal.TotalScore, signal.PostCount),
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.stockRepo.Create(ctx, stock); err != nil {
			return nil, fmt.Errorf("failed to create stock %s: %w", signal.Keyword, err)
		}
		if err := s.stockRepo.AppendHistory(ctx, &entities.PricePoint{
			StockID:    stock.ID,
			Value:      stock.CurrentValue,
			RecordedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("failed to seed history for stock %s: %w", signal.Keyword, err)
		}
		if err := s.eventPublisher.Publish(events.StockListedEvent{
			StockID: stock.ID.String(),
			Keyword: stock.Keyword,
			Value:   stock.CurrentValue,
		}); err != nil {
			return nil, fmt.Errorf("failed to publish stock listed event: %w", err)
		}

		log.WithFields(log.Fields{
			"keyword": stock.Keyword,
			"value":   stock.CurrentValue,
		}).Info("Listed new meme stock")

		created = append(created, stock)
		free--
	}

	return created, nil
}

// GetMarket returns all active stocks.
func (s *MarketService) GetMarket(ctx context.Context) ([]*entities.MemeStock, error) {
	stocks, err := s.stockRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active stocks: %w", err)
	}
	return stocks, nil
}

// GetStockHistory returns a stock's price history in chronological order.
func (s *MarketService) GetStockHistory(ctx context.Context, stockID uuid.UUID, limit int) ([]*entities.PricePoint, error) {
	history, err := s.stockRepo.GetHistory(ctx, stockID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock history: %w", err)
	}
	return history, nil
}
