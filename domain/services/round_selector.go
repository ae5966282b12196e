package services

import (
	"sort"

	"gamerit/domain/entities"
	"gamerit/reddit"
)

// PostPair is a candidate head-to-head matchup
type PostPair struct {
	A reddit.Post
	B reddit.Post
}

// PairExclusion holds recently used post ids and subreddit pairings so new
// rounds avoid repetition. Best effort only; when content runs dry the
// selector falls back to reused pairings rather than producing nothing.
type PairExclusion struct {
	postIDs map[string]struct{}
	pairs   map[[2]string]struct{}
}

// BuildPairExclusion collects exclusions from recent rounds
func BuildPairExclusion(recent []*entities.Round) *PairExclusion {
	e := &PairExclusion{
		postIDs: make(map[string]struct{}),
		pairs:   make(map[[2]string]struct{}),
	}
	for _, round := range recent {
		e.postIDs[round.PostA.PostID] = struct{}{}
		e.postIDs[round.PostB.PostID] = struct{}{}
		// Record both orderings so A-vs-B also blocks B-vs-A
		e.pairs[[2]string{round.PostA.Subreddit, round.PostB.Subreddit}] = struct{}{}
		e.pairs[[2]string{round.PostB.Subreddit, round.PostA.Subreddit}] = struct{}{}
	}
	return e
}

// ExcludesPost reports whether the post was used in a recent round
func (e *PairExclusion) ExcludesPost(postID string) bool {
	_, ok := e.postIDs[postID]
	return ok
}

// ExcludesPair reports whether the subreddit pairing was recently used
func (e *PairExclusion) ExcludesPair(subA, subB string) bool {
	_, ok := e.pairs[[2]string{subA, subB}]
	return ok
}

// AddPair marks a pairing as used so one selection cycle doesn't pick the
// same matchup twice
func (e *PairExclusion) AddPair(pair *PostPair) {
	e.postIDs[pair.A.ID] = struct{}{}
	e.postIDs[pair.B.ID] = struct{}{}
	e.pairs[[2]string{pair.A.Subreddit, pair.B.Subreddit}] = struct{}{}
	e.pairs[[2]string{pair.B.Subreddit, pair.A.Subreddit}] = struct{}{}
}

// RoundSelector contains pure pair-selection logic for new rounds
type RoundSelector struct{}

// NewRoundSelector creates a new RoundSelector
func NewRoundSelector() *RoundSelector {
	return &RoundSelector{}
}

// SelectPair picks the best available matchup from the candidate pool.
// Preference order:
//  1. two posts from different subreddits whose pairing wasn't recently used
//  2. the top-scored post plus the first post from a different subreddit
//  3. the top two posts regardless of subreddit
//
// Returns false when fewer than two usable candidates remain.
func (s *RoundSelector) SelectPair(candidates []reddit.Post, excl *PairExclusion) (*PostPair, bool) {
	usable := s.prepareCandidates(candidates, excl)
	if len(usable) < 2 {
		return nil, false
	}

	// Pass 1: fresh pairing across distinct subreddits
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			if usable[i].Subreddit == usable[j].Subreddit {
				continue
			}
			if excl.ExcludesPair(usable[i].Subreddit, usable[j].Subreddit) {
				continue
			}
			return &PostPair{A: usable[i], B: usable[j]}, true
		}
	}

	// Pass 2: top post plus the first post from any other subreddit
	for j := 1; j < len(usable); j++ {
		if usable[j].Subreddit != usable[0].Subreddit {
			return &PostPair{A: usable[0], B: usable[j]}, true
		}
	}

	// Pass 3: best available regardless of subreddit
	return &PostPair{A: usable[0], B: usable[1]}, true
}

// prepareCandidates de-duplicates by post id, drops excluded posts and ranks
// the remainder by score
func (s *RoundSelector) prepareCandidates(candidates []reddit.Post, excl *PairExclusion) []reddit.Post {
	seen := make(map[string]struct{}, len(candidates))
	usable := make([]reddit.Post, 0, len(candidates))
	for _, post := range candidates {
		if _, ok := seen[post.ID]; ok {
			continue
		}
		seen[post.ID] = struct{}{}
		if excl.ExcludesPost(post.ID) {
			continue
		}
		usable = append(usable, post)
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Score > usable[j].Score
	})
	return usable
}
