package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"gamerit/application"
	"gamerit/domain/entities"
	"gamerit/metrics"
)

type contextKey string

const identityKey contextKey = "player_identity"

// PlayerIdentity is the authenticated caller, injected by the fronting auth
// layer as headers.
type PlayerIdentity struct {
	RedditID string
	Username string
}

// Server exposes the player-facing and admin HTTP surface
type Server struct {
	uowFactory   application.UnitOfWorkFactory
	roundWorker  *application.RoundPoolWorker
	marketWorker *application.MarketWorker
}

// NewServer creates a new API server
func NewServer(uowFactory application.UnitOfWorkFactory, roundWorker *application.RoundPoolWorker, marketWorker *application.MarketWorker) *Server {
	return &Server{
		uowFactory:   uowFactory,
		roundWorker:  roundWorker,
		marketWorker: marketWorker,
	}
}

// Router builds the chi router with all routes mounted
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/rounds", s.handleListRounds)
		r.Get("/rounds/{id}", s.handleGetRound)
		r.Get("/rounds/{id}/bets", s.handleGetRoundBets)
		r.Get("/stocks", s.handleListStocks)
		r.Get("/stocks/{id}", s.handleGetStock)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Post("/rounds/trigger", s.handleTriggerRounds)
		r.Post("/market/refresh", s.handleRefreshMarket)

		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)
			r.Get("/players/me", s.handleGetMe)
			r.Post("/players/me/welfare", s.handleClaimWelfare)
			r.Get("/players/me/bets", s.handleGetMyBets)
			r.Get("/players/me/portfolio", s.handleGetMyPortfolio)
			r.Get("/players/me/history", s.handleGetMyHistory)
			r.Post("/players/me/meta-minutes", s.handleAddMetaMinutes)
			r.Post("/rounds/{id}/bets", s.handlePlaceBet)
			r.Post("/stocks/{id}/buy", s.handleBuyStock)
			r.Post("/stocks/{id}/sell", s.handleSellStock)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireIdentity rejects requests missing the identity headers the auth
// layer injects after Reddit OAuth.
func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		redditID := r.Header.Get("X-Player-ID")
		username := r.Header.Get("X-Player-Name")
		if redditID == "" || username == "" {
			writeError(w, http.StatusUnauthorized, errors.New("missing player identity"))
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, PlayerIdentity{RedditID: redditID, Username: username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(r *http.Request) PlayerIdentity {
	identity, _ := r.Context().Value(identityKey).(PlayerIdentity)
	return identity
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// writeDomainError maps domain sentinel errors onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, entities.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, entities.ErrInsufficientFunds),
		errors.Is(err, entities.ErrInsufficientShares):
		writeError(w, http.StatusPaymentRequired, err)
	case errors.Is(err, entities.ErrRoundNotActive),
		errors.Is(err, entities.ErrStockNotActive),
		errors.Is(err, entities.ErrWelfareNotEligible),
		errors.Is(err, entities.ErrAlreadyBet),
		errors.Is(err, entities.ErrRoundPoolFull):
		writeError(w, http.StatusConflict, err)
	default:
		log.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

// withUnitOfWork runs fn inside a transaction, committing when fn succeeds
func (s *Server) withUnitOfWork(ctx context.Context, fn func(uow application.UnitOfWork) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}
