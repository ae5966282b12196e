package entities

import (
	"time"

	"github.com/google/uuid"
)

// PlayerPortfolio is a player's position in one meme stock. Shares and
// average buy price move together: buys re-weight the cost basis, sells
// reduce shares and leave the per-share basis unchanged.
type PlayerPortfolio struct {
	ID          int64     `db:"id"`
	PlayerID    string    `db:"player_id"`
	StockID     uuid.UUID `db:"stock_id"`
	Shares      int64     `db:"shares"`
	AvgBuyPrice float64   `db:"avg_buy_price"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// SharesForChips returns how many whole shares a chip amount buys at a value
func SharesForChips(chips, currentValue int64) int64 {
	if currentValue <= 0 {
		return 0
	}
	return chips / currentValue
}

// ApplyBuy adds shares at the given price and re-weights the cost basis
func (pp *PlayerPortfolio) ApplyBuy(shares, price int64) {
	total := pp.Shares + shares
	if total > 0 {
		pp.AvgBuyPrice = (float64(pp.Shares)*pp.AvgBuyPrice + float64(shares)*float64(price)) / float64(total)
	}
	pp.Shares = total
}

// ApplySell removes shares; the remaining cost basis per share is unchanged
func (pp *PlayerPortfolio) ApplySell(shares int64) {
	pp.Shares -= shares
}

// MarketValue returns the position's value at the given stock price
func (pp *PlayerPortfolio) MarketValue(currentValue int64) int64 {
	return pp.Shares * currentValue
}

// ProfitLoss returns the realized P&L of selling shares at the given price
func (pp *PlayerPortfolio) ProfitLoss(shares, currentValue int64) int64 {
	proceeds := shares * currentValue
	basis := int64(float64(shares) * pp.AvgBuyPrice)
	return proceeds - basis
}
