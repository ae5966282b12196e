package entities

import (
	"time"
)

// Player represents a persistent account tied to a Reddit identity
type Player struct {
	RedditID      string     `db:"reddit_id"`
	Username      string     `db:"username"`
	Balance       int64      `db:"balance"`
	XP            int64      `db:"xp"`
	Level         int        `db:"level"`
	MetaMinutes   int64      `db:"meta_minutes"`
	LastWelfareAt *time.Time `db:"last_welfare_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// CanAfford checks if the player has sufficient balance for an amount
func (p *Player) CanAfford(amount int64) bool {
	return p.Balance >= amount
}

// ValidateAmount checks if an amount is valid (positive and affordable)
func (p *Player) ValidateAmount(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !p.CanAfford(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// LevelForXP computes the level implied by an XP total
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/1000) + 1
}

// WelfareEligible reports whether the player can claim welfare right now.
// Eligibility requires a balance below the threshold and no claim within the
// cooldown window.
func (p *Player) WelfareEligible(threshold int64, cooldown time.Duration, now time.Time) bool {
	if p.Balance >= threshold {
		return false
	}
	if p.LastWelfareAt != nil && now.Sub(*p.LastWelfareAt) < cooldown {
		return false
	}
	return true
}

// NextWelfareAt returns when the player's welfare cooldown lapses.
// Zero time means no prior claim exists.
func (p *Player) NextWelfareAt(cooldown time.Duration) time.Time {
	if p.LastWelfareAt == nil {
		return time.Time{}
	}
	return p.LastWelfareAt.Add(cooldown)
}
