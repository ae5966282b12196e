package entities

import (
	"time"

	"github.com/google/uuid"
)

// RoundStatus represents the lifecycle state of a round
type RoundStatus string

const (
	RoundStatusActive   RoundStatus = "active"
	RoundStatusFinished RoundStatus = "finished"
)

// RoundSide identifies one of the two posts in a round
type RoundSide string

const (
	RoundSideA RoundSide = "A"
	RoundSideB RoundSide = "B"
)

// IsValid reports whether the side is one of the two recognized values
func (s RoundSide) IsValid() bool {
	return s == RoundSideA || s == RoundSideB
}

// RoundPost is one side of a head-to-head round: a Reddit post with the score
// captured at round creation and the most recently refreshed score.
type RoundPost struct {
	PostID       string `db:"post_id"`
	Title        string `db:"title"`
	Author       string `db:"author"`
	Subreddit    string `db:"subreddit"`
	InitialScore int64  `db:"initial_score"`
	FinalScore   int64  `db:"final_score"`
	// Exists turns false when the post is deleted upstream; the final score
	// then freezes at the last known value.
	Exists bool `db:"exists"`
}

// ScoreDelta returns the upvote growth since round creation
func (rp *RoundPost) ScoreDelta() int64 {
	return rp.FinalScore - rp.InitialScore
}

// Round represents one head-to-head betting contest between two Reddit posts
type Round struct {
	ID         uuid.UUID   `db:"id"`
	Status     RoundStatus `db:"status"`
	Winner     *RoundSide  `db:"winner"`
	PostA      RoundPost
	PostB      RoundPost
	CreatedAt  time.Time  `db:"created_at"`
	FinishedAt *time.Time `db:"finished_at"`
	SettledAt  *time.Time `db:"settled_at"`
}

// IsActive reports whether the round still accepts bets and score updates
func (r *Round) IsActive() bool {
	return r.Status == RoundStatusActive
}

// IsExpired reports whether the round has outlived its betting window
func (r *Round) IsExpired(duration time.Duration, now time.Time) bool {
	return now.Sub(r.CreatedAt) >= duration
}

// ComputeWinner determines the winning side by score delta: the side whose
// post gained more upvotes during the round wins. Ties go to side A.
func (r *Round) ComputeWinner() RoundSide {
	if r.PostB.ScoreDelta() > r.PostA.ScoreDelta() {
		return RoundSideB
	}
	return RoundSideA
}

// Post returns the round post for the given side
func (r *Round) Post(side RoundSide) *RoundPost {
	if side == RoundSideB {
		return &r.PostB
	}
	return &r.PostA
}

// SubredditPair returns the round's subreddit pairing in side order
func (r *Round) SubredditPair() [2]string {
	return [2]string{r.PostA.Subreddit, r.PostB.Subreddit}
}
