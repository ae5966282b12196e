package entities

import (
	"time"

	"github.com/google/uuid"
)

// StockValueFloor is the minimum value a stock can ever trade at
const StockValueFloor int64 = 10

// MemeStock is a tradable synthetic instrument keyed by a trending keyword.
// Its value is derived from aggregate Reddit post score and post-count
// signals; deactivated stocks keep their last value but are no longer
// purchasable.
type MemeStock struct {
	ID           uuid.UUID `db:"id"`
	Keyword      string    `db:"keyword"`
	CurrentValue int64     `db:"current_value"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PricePoint is one entry in a stock's append-only value history
type PricePoint struct {
	StockID    uuid.UUID `db:"stock_id"`
	Value      int64     `db:"value"`
	RecordedAt time.Time `db:"recorded_at"`
}

// IsExpired reports whether the stock has outlived its trading window
func (s *MemeStock) IsExpired(lifetime time.Duration, now time.Time) bool {
	return now.Sub(s.CreatedAt) >= lifetime
}

// StockValue computes a stock's value from aggregated keyword signals,
// clamped to the floor: max(floor, (totalScore + posts*10) / 100).
func StockValue(totalScore int64, postCount int) int64 {
	value := (totalScore + int64(postCount)*10) / 100
	if value < StockValueFloor {
		return StockValueFloor
	}
	return value
}
