package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gamerit/application"
	"gamerit/domain/entities"
	"gamerit/domain/services"
	"gamerit/metrics"
)

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != "active" && status != "finished" {
		writeError(w, http.StatusBadRequest, errors.New("status must be active or finished"))
		return
	}
	limit := queryLimit(r, 20)

	var resp []roundResponse
	err := s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		roundService := services.NewRoundService(uow.RoundRepository(), uow.BetRepository(), uow.EventBus())
		var rounds []*entities.Round
		var err error
		if status == "finished" {
			rounds, err = roundService.GetPreviousRounds(r.Context(), limit)
		} else {
			rounds, err = roundService.GetActiveRounds(r.Context())
		}
		if err != nil {
			return err
		}
		resp = toRoundResponses(rounds)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	roundID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid round id"))
		return
	}

	var resp roundResponse
	found := false
	err = s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		roundService := services.NewRoundService(uow.RoundRepository(), uow.BetRepository(), uow.EventBus())
		round, err := roundService.GetRound(r.Context(), roundID)
		if err != nil {
			return err
		}
		if round == nil {
			return nil
		}
		found = true
		resp = toRoundResponse(round)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.New("round not found"))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRoundBets(w http.ResponseWriter, r *http.Request) {
	roundID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid round id"))
		return
	}

	var resp []betResponse
	err = s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		roundService := services.NewRoundService(uow.RoundRepository(), uow.BetRepository(), uow.EventBus())
		bets, err := roundService.GetRoundBets(r.Context(), roundID)
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

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	roundID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid round id"))
		return
	}

	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	var resp betResponse
	err = s.withUnitOfWork(r.Context(), func(uow application.UnitOfWork) error {
		playerService := services.NewPlayerService(uow.PlayerRepository(), uow.BalanceHistoryRepository(), uow.EventBus())
		if _, err := playerService.GetOrCreate(r.Context(), identity.RedditID, identity.Username); err != nil {
			return err
		}
		bettingService := services.NewBettingService(
			uow.PlayerRepository(),
			uow.RoundRepository(),
			uow.BetRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
		)
		bet, err := bettingService.PlaceBet(r.Context(), identity.RedditID, roundID, req.Side, req.Amount)
		if err != nil {
			return err
		}
		resp = toBetResponse(bet)
		return nil
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	metrics.BetsPlacedTotal.WithLabelValues(string(req.Side)).Inc()
	metrics.ChipsWagered.Add(float64(req.Amount))
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTriggerRounds(w http.ResponseWriter, r *http.Request) {
	if err := s.roundWorker.RunOnce(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "round pool refreshed"})
}
