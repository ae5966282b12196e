package api

import (
	"time"

	"gamerit/domain/entities"
)

// Request and response shapes for the HTTP surface. Entities stay internal;
// these control exactly what leaves the process.

type playerResponse struct {
	RedditID      string            `json:"reddit_id"`
	Username      string            `json:"username"`
	Balance       int64             `json:"balance"`
	XP            int64             `json:"xp"`
	Level         int               `json:"level"`
	MetaMinutes   int64             `json:"meta_minutes"`
	LastWelfareAt *time.Time        `json:"last_welfare_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	BetStats      *betStatsResponse `json:"bet_stats,omitempty"`
}

type betStatsResponse struct {
	TotalBets    int64 `json:"total_bets"`
	TotalWins    int64 `json:"total_wins"`
	TotalLosses  int64 `json:"total_losses"`
	TotalWagered int64 `json:"total_wagered"`
	TotalWon     int64 `json:"total_won"`
	BiggestWin   int64 `json:"biggest_win"`
}

func toBetStatsResponse(s *entities.BetStats) *betStatsResponse {
	if s == nil {
		return nil
	}
	return &betStatsResponse{
		TotalBets:    s.TotalBets,
		TotalWins:    s.TotalWins,
		TotalLosses:  s.TotalLosses,
		TotalWagered: s.TotalWagered,
		TotalWon:     s.TotalWon,
		BiggestWin:   s.BiggestWin,
	}
}

func toPlayerResponse(p *entities.Player) playerResponse {
	return playerResponse{
		RedditID:      p.RedditID,
		Username:      p.Username,
		Balance:       p.Balance,
		XP:            p.XP,
		Level:         p.Level,
		MetaMinutes:   p.MetaMinutes,
		LastWelfareAt: p.LastWelfareAt,
		CreatedAt:     p.CreatedAt,
	}
}

type roundPostResponse struct {
	PostID       string `json:"post_id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Subreddit    string `json:"subreddit"`
	InitialScore int64  `json:"initial_score"`
	CurrentScore int64  `json:"current_score"`
	ScoreDelta   int64  `json:"score_delta"`
	Deleted      bool   `json:"deleted"`
}

func toRoundPostResponse(rp *entities.RoundPost) roundPostResponse {
	return roundPostResponse{
		PostID:       rp.PostID,
		Title:        rp.Title,
		Author:       rp.Author,
		Subreddit:    rp.Subreddit,
		InitialScore: rp.InitialScore,
		CurrentScore: rp.FinalScore,
		ScoreDelta:   rp.ScoreDelta(),
		Deleted:      !rp.Exists,
	}
}

type roundResponse struct {
	ID         string               `json:"id"`
	Status     entities.RoundStatus `json:"status"`
	Winner     *entities.RoundSide  `json:"winner,omitempty"`
	PostA      roundPostResponse    `json:"post_a"`
	PostB      roundPostResponse    `json:"post_b"`
	CreatedAt  time.Time            `json:"created_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
}

func toRoundResponse(r *entities.Round) roundResponse {
	return roundResponse{
		ID:         r.ID.String(),
		Status:     r.Status,
		Winner:     r.Winner,
		PostA:      toRoundPostResponse(&r.PostA),
		PostB:      toRoundPostResponse(&r.PostB),
		CreatedAt:  r.CreatedAt,
		FinishedAt: r.FinishedAt,
	}
}

func toRoundResponses(rounds []*entities.Round) []roundResponse {
	out := make([]roundResponse, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, toRoundResponse(r))
	}
	return out
}

type placeBetRequest struct {
	Side   entities.RoundSide `json:"side"`
	Amount int64              `json:"amount"`
}

type betResponse struct {
	ID        int64              `json:"id"`
	RoundID   string             `json:"round_id"`
	Side      entities.RoundSide `json:"side"`
	Amount    int64              `json:"amount"`
	Payout    *int64             `json:"payout,omitempty"`
	Settled   bool               `json:"settled"`
	CreatedAt time.Time          `json:"created_at"`
}

func toBetResponse(b *entities.Bet) betResponse {
	return betResponse{
		ID:        b.ID,
		RoundID:   b.RoundID.String(),
		Side:      b.Side,
		Amount:    b.Amount,
		Payout:    b.Payout,
		Settled:   b.IsSettled(),
		CreatedAt: b.CreatedAt,
	}
}

type stockResponse struct {
	ID           string    `json:"id"`
	Keyword      string    `json:"keyword"`
	CurrentValue int64     `json:"current_value"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func toStockResponse(s *entities.MemeStock) stockResponse {
	return stockResponse{
		ID:           s.ID.String(),
		Keyword:      s.Keyword,
		CurrentValue: s.CurrentValue,
		Active:       s.Active,
		CreatedAt:    s.CreatedAt,
	}
}

type pricePointResponse struct {
	Value      int64     `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

type stockDetailResponse struct {
	stockResponse
	History []pricePointResponse `json:"history"`
}

type buyStockRequest struct {
	Chips int64 `json:"chips"`
}

type sellStockRequest struct {
	Shares int64 `json:"shares"`
}

type tradeResponse struct {
	StockID    string `json:"stock_id"`
	Keyword    string `json:"keyword"`
	Shares     int64  `json:"shares"`
	Chips      int64  `json:"chips"`
	NewBalance int64  `json:"new_balance"`
	ProfitLoss int64  `json:"profit_loss,omitempty"`
}

type portfolioPositionResponse struct {
	StockID      string  `json:"stock_id"`
	Keyword      string  `json:"keyword"`
	Shares       int64   `json:"shares"`
	AvgBuyPrice  float64 `json:"avg_buy_price"`
	CurrentValue int64   `json:"current_value"`
	MarketValue  int64   `json:"market_value"`
}

type balanceHistoryResponse struct {
	BalanceBefore   int64                    `json:"balance_before"`
	BalanceAfter    int64                    `json:"balance_after"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	RelatedID       *string                  `json:"related_id,omitempty"`
	RelatedType     *entities.RelatedType    `json:"related_type,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

type metaMinutesRequest struct {
	Delta int64 `json:"delta"`
}

type metaMinutesResponse struct {
	MetaMinutes int64 `json:"meta_minutes"`
}

type leaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
	Level    int    `json:"level"`
}

type errorResponse struct {
	Error string `json:"error"`
}
