package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gamerit/application"
	"gamerit/config"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
	"gamerit/domain/testhelpers"
)

// fakeUnitOfWork hands out mocked repositories without a real transaction
type fakeUnitOfWork struct {
	players   *testhelpers.MockPlayerRepository
	rounds    *testhelpers.MockRoundRepository
	bets      *testhelpers.MockBetRepository
	stocks    *testhelpers.MockStockRepository
	portfolio *testhelpers.MockPortfolioRepository
	history   *testhelpers.MockBalanceHistoryRepository
	jobLocks  *testhelpers.MockJobLockRepository
	events    *testhelpers.MockEventPublisher
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	events := new(testhelpers.MockEventPublisher)
	events.On("Publish", mock.Anything).Return(nil).Maybe()
	return &fakeUnitOfWork{
		players:   new(testhelpers.MockPlayerRepository),
		rounds:    new(testhelpers.MockRoundRepository),
		bets:      new(testhelpers.MockBetRepository),
		stocks:    new(testhelpers.MockStockRepository),
		portfolio: new(testhelpers.MockPortfolioRepository),
		history:   new(testhelpers.MockBalanceHistoryRepository),
		jobLocks:  new(testhelpers.MockJobLockRepository),
		events:    events,
	}
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) PlayerRepository() interfaces.PlayerRepository { return f.players }
func (f *fakeUnitOfWork) RoundRepository() interfaces.RoundRepository   { return f.rounds }
func (f *fakeUnitOfWork) BetRepository() interfaces.BetRepository       { return f.bets }
func (f *fakeUnitOfWork) StockRepository() interfaces.StockRepository   { return f.stocks }
func (f *fakeUnitOfWork) PortfolioRepository() interfaces.PortfolioRepository {
	return f.portfolio
}
func (f *fakeUnitOfWork) BalanceHistoryRepository() interfaces.BalanceHistoryRepository {
	return f.history
}
func (f *fakeUnitOfWork) JobLockRepository() interfaces.JobLockRepository { return f.jobLocks }
func (f *fakeUnitOfWork) EventBus() interfaces.EventPublisher             { return f.events }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) Create() application.UnitOfWork { return f.uow }

func newTestServer(t *testing.T) (*Server, *fakeUnitOfWork) {
	t.Helper()
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	uow := newFakeUnitOfWork()
	server := NewServer(&fakeUowFactory{uow: uow}, nil, nil)
	return server, uow
}

func doRequest(server *Server, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("X-Player-ID", "t2_abc")
		req.Header.Set("X-Player-Name", "test_player")
	}
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/healthz", nil, false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestIdentityRequired(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/players/me", nil, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetMe(t *testing.T) {
	t.Run("creates the player on first sight", func(t *testing.T) {
		server, uow := newTestServer(t)

		created := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 1000, Level: 1}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(nil, nil)
		uow.players.On("Create", mock.Anything, "t2_abc", "test_player", int64(1000)).Return(created, nil)
		uow.history.On("Record", mock.Anything, mock.Anything).Return(nil)
		uow.bets.On("GetStats", mock.Anything, "t2_abc").Return(&entities.BetStats{}, nil)

		rec := doRequest(server, http.MethodGet, "/api/players/me", nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp playerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "test_player", resp.Username)
		assert.Equal(t, int64(1000), resp.Balance)
	})

	t.Run("returns the existing player untouched", func(t *testing.T) {
		server, uow := newTestServer(t)

		existing := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 420, Level: 3}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(existing, nil)
		uow.bets.On("GetStats", mock.Anything, "t2_abc").Return(&entities.BetStats{
			TotalBets: 12, TotalWins: 5, TotalLosses: 7, TotalWagered: 600, TotalWon: 500, BiggestWin: 200,
		}, nil)

		rec := doRequest(server, http.MethodGet, "/api/players/me", nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp playerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(420), resp.Balance)
		require.NotNil(t, resp.BetStats)
		assert.Equal(t, int64(12), resp.BetStats.TotalBets)
		assert.Equal(t, int64(200), resp.BetStats.BiggestWin)
		uow.players.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClaimWelfare(t *testing.T) {
	t.Run("rejects an ineligible player", func(t *testing.T) {
		server, uow := newTestServer(t)

		rich := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 5000}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(rich, nil)

		rec := doRequest(server, http.MethodPost, "/api/players/me/welfare", nil, true)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("grants the stipend to a broke player", func(t *testing.T) {
		server, uow := newTestServer(t)

		broke := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 40}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(broke, nil)
		uow.players.On("AdjustBalance", mock.Anything, "t2_abc", int64(250)).Return(int64(290), nil)
		uow.players.On("SetWelfareClaimedAt", mock.Anything, "t2_abc", mock.Anything).Return(nil)
		uow.history.On("Record", mock.Anything, mock.Anything).Return(nil)

		rec := doRequest(server, http.MethodPost, "/api/players/me/welfare", nil, true)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp playerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(290), resp.Balance)
	})
}

func TestListRounds(t *testing.T) {
	server, uow := newTestServer(t)

	round := &entities.Round{
		ID:     uuid.New(),
		Status: entities.RoundStatusActive,
		PostA:  entities.RoundPost{PostID: "aaa", Subreddit: "aww", InitialScore: 100, FinalScore: 150, Exists: true},
		PostB:  entities.RoundPost{PostID: "bbb", Subreddit: "gaming", InitialScore: 200, FinalScore: 210, Exists: true},
	}
	uow.rounds.On("GetActive", mock.Anything).Return([]*entities.Round{round}, nil)

	rec := doRequest(server, http.MethodGet, "/api/rounds", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []roundResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(50), resp[0].PostA.ScoreDelta)
	assert.Equal(t, int64(10), resp[0].PostB.ScoreDelta)
}

func TestListRoundsRejectsUnknownStatus(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/rounds?status=pending", nil, false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRound(t *testing.T) {
	t.Run("rejects a malformed id", func(t *testing.T) {
		server, _ := newTestServer(t)

		rec := doRequest(server, http.MethodGet, "/api/rounds/not-a-uuid", nil, false)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("404 for an unknown round", func(t *testing.T) {
		server, uow := newTestServer(t)

		uow.rounds.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)

		rec := doRequest(server, http.MethodGet, "/api/rounds/"+uuid.NewString(), nil, false)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPlaceBet(t *testing.T) {
	roundID := uuid.New()
	activeRound := &entities.Round{
		ID:     roundID,
		Status: entities.RoundStatusActive,
		PostA:  entities.RoundPost{PostID: "aaa", Exists: true},
		PostB:  entities.RoundPost{PostID: "bbb", Exists: true},
	}
	player := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 1000}

	t.Run("places a valid bet", func(t *testing.T) {
		server, uow := newTestServer(t)

		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.rounds.On("GetByIDForShare", mock.Anything, roundID).Return(activeRound, nil)
		uow.players.On("AdjustBalance", mock.Anything, "t2_abc", int64(-50)).Return(int64(950), nil)
		uow.history.On("Record", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			args.Get(1).(*entities.BalanceHistory).ID = 11
		}).Return(nil)
		uow.bets.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			bet := args.Get(1).(*entities.Bet)
			bet.ID = 7
			bet.CreatedAt = time.Now().UTC()
		}).Return(nil)

		rec := doRequest(server, http.MethodPost, "/api/rounds/"+roundID.String()+"/bets",
			placeBetRequest{Side: entities.RoundSideA, Amount: 50}, true)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp betResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(7), resp.ID)
		assert.Equal(t, entities.RoundSideA, resp.Side)
		assert.False(t, resp.Settled)
	})

	t.Run("maps an overdraft to 402", func(t *testing.T) {
		server, uow := newTestServer(t)

		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.rounds.On("GetByIDForShare", mock.Anything, roundID).Return(activeRound, nil)
		uow.players.On("AdjustBalance", mock.Anything, "t2_abc", int64(-5000)).
			Return(int64(0), entities.ErrInsufficientFunds)

		rec := doRequest(server, http.MethodPost, "/api/rounds/"+roundID.String()+"/bets",
			placeBetRequest{Side: entities.RoundSideA, Amount: 5000}, true)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("maps a finished round to 409", func(t *testing.T) {
		server, uow := newTestServer(t)

		finished := &entities.Round{ID: roundID, Status: entities.RoundStatusFinished}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.rounds.On("GetByIDForShare", mock.Anything, roundID).Return(finished, nil)

		rec := doRequest(server, http.MethodPost, "/api/rounds/"+roundID.String()+"/bets",
			placeBetRequest{Side: entities.RoundSideB, Amount: 50}, true)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		server, uow := newTestServer(t)

		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)

		rec := doRequest(server, http.MethodPost, "/api/rounds/"+roundID.String()+"/bets",
			placeBetRequest{Side: entities.RoundSideA, Amount: 0}, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListStocks(t *testing.T) {
	server, uow := newTestServer(t)

	stock := &entities.MemeStock{ID: uuid.New(), Keyword: "doge", CurrentValue: 50, Active: true}
	uow.stocks.On("GetActive", mock.Anything).Return([]*entities.MemeStock{stock}, nil)

	rec := doRequest(server, http.MethodGet, "/api/stocks", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []stockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "doge", resp[0].Keyword)
	assert.Equal(t, int64(50), resp[0].CurrentValue)
}

func TestBuyStock(t *testing.T) {
	stockID := uuid.New()
	stock := &entities.MemeStock{ID: stockID, Keyword: "doge", CurrentValue: 50, Active: true}
	player := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 1000}

	t.Run("buys whole shares", func(t *testing.T) {
		server, uow := newTestServer(t)

		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.stocks.On("GetByID", mock.Anything, stockID).Return(stock, nil)
		uow.players.On("AdjustBalance", mock.Anything, "t2_abc", int64(-100)).Return(int64(900), nil)
		uow.portfolio.On("GetByPlayerAndStock", mock.Anything, "t2_abc", stockID).Return(nil, nil)
		uow.portfolio.On("Create", mock.Anything, mock.Anything).Return(nil)
		uow.history.On("Record", mock.Anything, mock.Anything).Return(nil)

		rec := doRequest(server, http.MethodPost, "/api/stocks/"+stockID.String()+"/buy",
			buyStockRequest{Chips: 120}, true)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp tradeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(2), resp.Shares)
		assert.Equal(t, int64(100), resp.Chips)
		assert.Equal(t, int64(900), resp.NewBalance)
	})

	t.Run("maps a delisted stock to 409", func(t *testing.T) {
		server, uow := newTestServer(t)

		delisted := &entities.MemeStock{ID: stockID, Keyword: "doge", CurrentValue: 50, Active: false}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.stocks.On("GetByID", mock.Anything, stockID).Return(delisted, nil)

		rec := doRequest(server, http.MethodPost, "/api/stocks/"+stockID.String()+"/buy",
			buyStockRequest{Chips: 120}, true)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("maps an unknown stock to 404", func(t *testing.T) {
		server, uow := newTestServer(t)

		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.stocks.On("GetByID", mock.Anything, stockID).Return(nil, nil)

		rec := doRequest(server, http.MethodPost, "/api/stocks/"+stockID.String()+"/buy",
			buyStockRequest{Chips: 120}, true)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSellStock(t *testing.T) {
	stockID := uuid.New()
	stock := &entities.MemeStock{ID: stockID, Keyword: "doge", CurrentValue: 60, Active: true}
	player := &entities.Player{RedditID: "t2_abc", Username: "test_player", Balance: 500}

	t.Run("maps an oversell to 402", func(t *testing.T) {
		server, uow := newTestServer(t)

		position := &entities.PlayerPortfolio{ID: 1, PlayerID: "t2_abc", StockID: stockID, Shares: 1, AvgBuyPrice: 50}
		uow.players.On("GetByRedditID", mock.Anything, "t2_abc").Return(player, nil)
		uow.stocks.On("GetByID", mock.Anything, stockID).Return(stock, nil)
		uow.portfolio.On("GetByPlayerAndStock", mock.Anything, "t2_abc", stockID).Return(position, nil)

		rec := doRequest(server, http.MethodPost, "/api/stocks/"+stockID.String()+"/sell",
			sellStockRequest{Shares: 5}, true)

		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})
}

func TestLeaderboard(t *testing.T) {
	server, uow := newTestServer(t)

	players := []*entities.Player{
		{RedditID: "t2_a", Username: "whale", Balance: 9000, Level: 5},
		{RedditID: "t2_b", Username: "minnow", Balance: 100, Level: 1},
	}
	uow.players.On("GetTopByBalance", mock.Anything, 10).Return(players, nil)

	rec := doRequest(server, http.MethodGet, "/api/leaderboard", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []leaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 1, resp[0].Rank)
	assert.Equal(t, "whale", resp[0].Username)
	assert.Equal(t, 2, resp[1].Rank)
}
