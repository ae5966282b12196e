package services

import (
	"testing"

	"gamerit/reddit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("lowercases and drops punctuation", func(t *testing.T) {
		keywords := ExtractKeywords("DOGE to the MOON!!! (not financial advice)")
		assert.Equal(t, []string{"doge", "moon", "financial", "advice"}, keywords)
	})

	t.Run("drops short tokens and stop words", func(t *testing.T) {
		keywords := ExtractKeywords("this is the best cat gif that reddit has")
		assert.Equal(t, []string{"best"}, keywords)
	})

	t.Run("keeps numeric runs", func(t *testing.T) {
		keywords := ExtractKeywords("GME 1000% gains incoming")
		assert.Equal(t, []string{"1000", "gains", "incoming"}, keywords)
	})

	t.Run("empty title yields nothing", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords(""))
		assert.Empty(t, ExtractKeywords("!!! ???"))
	})
}

func TestAggregateKeywords(t *testing.T) {
	posts := []reddit.Post{
		{ID: "p1", Title: "doge doge doge everywhere", Score: 3000},
		{ID: "p2", Title: "doge hits a new high", Score: 2000},
		{ID: "p3", Title: "stonks only go up", Score: 500},
	}

	signals := AggregateKeywords(posts)

	t.Run("counts every occurrence", func(t *testing.T) {
		require.Contains(t, signals, "doge")
		assert.Equal(t, 4, signals["doge"].Count)
	})

	t.Run("scores each post once regardless of repeats", func(t *testing.T) {
		assert.Equal(t, 2, signals["doge"].PostCount)
		assert.Equal(t, int64(5000), signals["doge"].TotalScore)
	})

	t.Run("single-post keywords stay below significance", func(t *testing.T) {
		require.Contains(t, signals, "stonks")
		assert.False(t, signals["stonks"].IsSignificant())
	})
}

func TestRankSignificant(t *testing.T) {
	t.Run("filters and orders by total score", func(t *testing.T) {
		ranked := RankSignificant(map[string]*KeywordSignal{
			"doge":   {Keyword: "doge", Count: 4, TotalScore: 5000, PostCount: 2},
			"stonks": {Keyword: "stonks", Count: 6, TotalScore: 9000, PostCount: 3},
			"weak":   {Keyword: "weak", Count: 1, TotalScore: 100000, PostCount: 1},
		})

		require.Len(t, ranked, 2)
		assert.Equal(t, "stonks", ranked[0].Keyword)
		assert.Equal(t, "doge", ranked[1].Keyword)
	})

	t.Run("ties break on keyword for determinism", func(t *testing.T) {
		ranked := RankSignificant(map[string]*KeywordSignal{
			"bbb": {Keyword: "bbb", Count: 3, TotalScore: 1000, PostCount: 2},
			"aaa": {Keyword: "aaa", Count: 3, TotalScore: 1000, PostCount: 2},
		})

		require.Len(t, ranked, 2)
		assert.Equal(t, "aaa", ranked[0].Keyword)
	})
}
