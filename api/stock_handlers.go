package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamerit/application"
	"gamerit/domain/interfaces"
	"gamerit/domain/services"
	"gamerit/metrics"
)

func (s *Server) handleListStocks(w http.ResponseWriter, r *http.Request) {
	var resp []stockResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		market := services.NewMarketService(uow.StockRepository(), uow.EventBus())
		stocks, err := market.GetMarket(r.Context())
		if err != nil {
			return err
		}
		resp = make([]stockResponse, 0, len(stocks))
		for _, stock := range stocks {
			resp = append(resp, toStockResponse(stock))
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	stockID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid stock id"))
		return
	}
	limit := queryLimit(r, 100)

	var resp stockDetailResponse
	found := false
	err = s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		stock, err := uow.StockRepository().GetByID(r.Context(), stockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return nil
		}
		found = true

		market := services.NewMarketService(uow.StockRepository(), uow.EventBus())
		history, err := market.GetStockHistory(r.Context(), stockID, limit)
		if err != nil {
			return err
		}
		resp = stockDetailResponse{stockResponse: toStockResponse(stock)}
		resp.History = make([]pricePointResponse, 0, len(history))
		for _, point := range history {
			resp.History = append(resp.History, pricePointResponse{Value: point.Value, RecordedAt: point.RecordedAt})
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.New("stock not found"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyStock(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	stockID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid stock id"))
		return
	}

	var req buyStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	result, err := s.executeTrade(r, func(trading interfaces.TradingService) (*interfaces.TradeResult, error) {
		return trading.BuyStock(r.Context(), identity.RedditID, stockID, req.Chips)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.TradesTotal.WithLabelValues("buy").Inc()
	writeJSON(w, http.StatusOK, tradeResponse{
		StockID:    result.Stock.ID.String(),
		Keyword:    result.Stock.Keyword,
		Shares:     result.Shares,
		Chips:      result.Chips,
		NewBalance: result.NewBalance,
	})
}

func (s *Server) handleSellStock(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	stockID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid stock id"))
		return
	}

	var req sellStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	result, err := s.executeTrade(r, func(trading interfaces.TradingService) (*interfaces.TradeResult, error) {
		return trading.SellStock(r.Context(), identity.RedditID, stockID, req.Shares)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.TradesTotal.WithLabelValues("sell").Inc()
	writeJSON(w, http.StatusOK, tradeResponse{
		StockID:    result.Stock.ID.String(),
		Keyword:    result.Stock.Keyword,
		Shares:     result.Shares,
		Chips:      result.Chips,
		NewBalance: result.NewBalance,
		ProfitLoss: result.ProfitLoss,
	})
}

func (s *Server) executeTrade(r *http.Request, trade func(interfaces.TradingService) (*interfaces.TradeResult, error)) (*interfaces.TradeResult, error) {
	identity := identityFrom(r)

	var result *interfaces.TradeResult
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		playerService := services.NewPlayerService(uow.PlayerRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		if _, err := playerService.GetOrCreate(r.Context(), identity.RedditID, identity.Username); err != nil {
			return err
		}
		trading := services.NewTradingService(
			uow.PlayerRepository(),
			uow.StockRepository(),
			uow.PortfolioRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
		)
		var err error
		result, err = trade(trading)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) handleRefreshMarket(w http.ResponseWriter, r *http.Request) {
	if err := s.marketWorker.RefreshOnly(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "market values refreshed"})
}
