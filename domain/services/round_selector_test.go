package services

import (
	"testing"

	"gamerit/domain/entities"
	"gamerit/reddit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(id, subreddit string, score int64) reddit.Post {
	return reddit.Post{ID: id, Title: "title " + id, Author: "author", Subreddit: subreddit, Score: score}
}

func TestRoundSelector_SelectPair(t *testing.T) {
	selector := NewRoundSelector()

	t.Run("prefers fresh cross-subreddit pairings", func(t *testing.T) {
		pair, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p2", "funny", 400),
			post("p3", "gaming", 300),
		}, BuildPairExclusion(nil))
		require.True(t, ok)
		assert.Equal(t, "p1", pair.A.ID)
		assert.Equal(t, "p3", pair.B.ID)
	})

	t.Run("skips recently used subreddit pairings", func(t *testing.T) {
		excl := BuildPairExclusion([]*entities.Round{
			{
				PostA: entities.RoundPost{PostID: "old1", Subreddit: "funny"},
				PostB: entities.RoundPost{PostID: "old2", Subreddit: "gaming"},
			},
		})

		pair, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p2", "gaming", 400),
			post("p3", "pics", 300),
		}, excl)
		require.True(t, ok)
		// funny-vs-gaming was just played in either ordering, funny-vs-pics is fresh.
		assert.Equal(t, "p1", pair.A.ID)
		assert.Equal(t, "p3", pair.B.ID)
	})

	t.Run("blocks reversed orderings of used pairings", func(t *testing.T) {
		excl := BuildPairExclusion([]*entities.Round{
			{
				PostA: entities.RoundPost{PostID: "old1", Subreddit: "gaming"},
				PostB: entities.RoundPost{PostID: "old2", Subreddit: "funny"},
			},
		})
		assert.True(t, excl.ExcludesPair("funny", "gaming"))
		assert.True(t, excl.ExcludesPair("gaming", "funny"))
	})

	t.Run("drops posts used in recent rounds", func(t *testing.T) {
		excl := BuildPairExclusion([]*entities.Round{
			{
				PostA: entities.RoundPost{PostID: "p1", Subreddit: "aww"},
				PostB: entities.RoundPost{PostID: "x9", Subreddit: "pics"},
			},
		})

		pair, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 900),
			post("p2", "funny", 500),
			post("p3", "gaming", 300),
		}, excl)
		require.True(t, ok)
		assert.Equal(t, "p2", pair.A.ID)
		assert.Equal(t, "p3", pair.B.ID)
	})

	t.Run("falls back to reused pairings before same-subreddit pairs", func(t *testing.T) {
		excl := BuildPairExclusion([]*entities.Round{
			{
				PostA: entities.RoundPost{PostID: "old1", Subreddit: "funny"},
				PostB: entities.RoundPost{PostID: "old2", Subreddit: "gaming"},
			},
		})

		pair, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p2", "funny", 400),
			post("p3", "gaming", 300),
		}, excl)
		require.True(t, ok)
		assert.NotEqual(t, pair.A.Subreddit, pair.B.Subreddit)
	})

	t.Run("last resort pairs within one subreddit", func(t *testing.T) {
		pair, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p2", "funny", 400),
		}, BuildPairExclusion(nil))
		require.True(t, ok)
		assert.Equal(t, "p1", pair.A.ID)
		assert.Equal(t, "p2", pair.B.ID)
	})

	t.Run("fails with fewer than two usable posts", func(t *testing.T) {
		_, ok := selector.SelectPair([]reddit.Post{post("p1", "funny", 500)}, BuildPairExclusion(nil))
		assert.False(t, ok)

		_, ok = selector.SelectPair(nil, BuildPairExclusion(nil))
		assert.False(t, ok)
	})

	t.Run("deduplicates candidates by post id", func(t *testing.T) {
		_, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p1", "funny", 500),
		}, BuildPairExclusion(nil))
		assert.False(t, ok)
	})

	t.Run("AddPair blocks the pairing within one cycle", func(t *testing.T) {
		excl := BuildPairExclusion(nil)
		first, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p2", "gaming", 400),
			post("p3", "funny", 300),
			post("p4", "pics", 200),
		}, excl)
		require.True(t, ok)
		excl.AddPair(first)

		second, ok := selector.SelectPair([]reddit.Post{
			post("p1", "funny", 500),
			post("p2", "gaming", 400),
			post("p3", "funny", 300),
			post("p4", "pics", 200),
		}, excl)
		require.True(t, ok)
		assert.NotEqual(t, first.A.ID, second.A.ID)
	})
}
