package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gamerit/application"
	"gamerit/domain/services"
)

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var resp playerResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		playerService := services.NewPlayerService(uow.PlayerRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		player, err := playerService.GetOrCreate(r.Context(), identity.RedditID, identity.Username)
		if err != nil {
			return err
		}
		stats, err := uow.BetRepository().GetStats(r.Context(), identity.RedditID)
		if err != nil {
			return err
		}
		resp = toPlayerResponse(player)
		resp.BetStats = toBetStatsResponse(stats)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaimWelfare(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var resp playerResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		playerService := services.NewPlayerService(uow.PlayerRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		player, err := playerService.ClaimWelfare(r.Context(), identity.RedditID)
		if err != nil {
			return err
		}
		resp = toPlayerResponse(player)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMyBets(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	limit := queryLimit(r, 50)

	var resp []betResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		bets, err := uow.BetRepository().GetByPlayer(r.Context(), identity.RedditID, limit)
		if err != nil {
			return err
		}
		resp = make([]betResponse, 0, len(bets))
		for _, bet := range bets {
			resp = append(resp, toBetResponse(bet))
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMyPortfolio(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var resp []portfolioPositionResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		positions, err := uow.PortfolioRepository().GetByPlayer(r.Context(), identity.RedditID)
		if err != nil {
			return err
		}
		resp = make([]portfolioPositionResponse, 0, len(positions))
		for _, pos := range positions {
			stock, err := uow.StockRepository().GetByID(r.Context(), pos.StockID)
			if err != nil {
				return err
			}
			entry := portfolioPositionResponse{
				StockID:     pos.StockID.String(),
				Shares:      pos.Shares,
				AvgBuyPrice: pos.AvgBuyPrice,
			}
			if stock != nil {
				entry.Keyword = stock.Keyword
				entry.CurrentValue = stock.CurrentValue
				entry.MarketValue = pos.MarketValue(stock.CurrentValue)
			}
			resp = append(resp, entry)
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMyHistory(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	limit := queryLimit(r, 50)

	var resp []balanceHistoryResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		entries, err := uow.BalanceHistoryRepository().GetByPlayer(r.Context(), identity.RedditID, limit)
		if err != nil {
			return err
		}
		resp = make([]balanceHistoryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, balanceHistoryResponse{
				BalanceBefore:   entry.BalanceBefore,
				BalanceAfter:    entry.BalanceAfter,
				ChangeAmount:    entry.ChangeAmount,
				TransactionType: entry.TransactionType,
				RelatedID:       entry.RelatedID,
				RelatedType:     entry.RelatedType,
				CreatedAt:       entry.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddMetaMinutes(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req metaMinutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	var total int64
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		playerService := services.NewPlayerService(uow.PlayerRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		if _, err := playerService.GetOrCreate(r.Context(), identity.RedditID, identity.Username); err != nil {
			return err
		}
		var err error
		total, err = playerService.AddMetaMinutes(r.Context(), identity.RedditID, req.Delta)
		return err
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metaMinutesResponse{MetaMinutes: total})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)

	var resp []leaderboardEntry
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		players, err := uow.PlayerRepository().GetTopByBalance(r.Context(), limit)
		if err != nil {
			return err
		}
		resp = make([]leaderboardEntry, 0, len(players))
		for i, player := range players {
			resp = append(resp, leaderboardEntry{
				Rank:     i + 1,
				Username: player.Username,
				Balance:  player.Balance,
				Level:    player.Level,
			})
		}
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// queryLimit parses the limit query parameter, clamped to a sane range
func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > 100 {
		return 100
	}
	return limit
}
