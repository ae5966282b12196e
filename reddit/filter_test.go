package reddit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterPosts(t *testing.T) {
	posts := []Post{
		{ID: "keep", Score: 100},
		{ID: "nsfw", Score: 100, Over18: true},
		{ID: "pinned", Score: 100, Stickied: true},
		{ID: "deleted", Score: 100, Author: "[deleted]"},
		{ID: "removed", Score: 100, IsSelf: true, SelfText: "[removed]"},
		{ID: "low", Score: 5},
	}

	filtered := FilterPosts(posts, FilterOptions{MinScore: 10})

	require.Len(t, filtered, 1)
	assert.Equal(t, "keep", filtered[0].ID)
}

func TestFilterPostsMinTextLength(t *testing.T) {
	posts := []Post{
		{ID: "long", Score: 50, IsSelf: true, SelfText: "a story long enough to keep around"},
		{ID: "short", Score: 50, IsSelf: true, SelfText: "meh"},
		{ID: "link", Score: 50, IsSelf: false},
	}

	filtered := FilterPosts(posts, FilterOptions{MinScore: 10, MinTextLength: 10})

	require.Len(t, filtered, 2)
	assert.Equal(t, "long", filtered[0].ID)
	assert.Equal(t, "link", filtered[1].ID)
}

func TestFilterPostsEmptyInput(t *testing.T) {
	assert.Empty(t, FilterPosts(nil, FilterOptions{MinScore: 10}))
}
