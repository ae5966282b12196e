package reddit

// FilterOptions tunes post filtering per consumer
type FilterOptions struct {
	MinScore      int64
	MinTextLength int // applies to self posts only; 0 disables
}

// FilterPosts applies the uniform content rules: no NSFW, no stickied posts,
// no deleted/removed content, plus per-consumer score and length thresholds.
func FilterPosts(posts []Post, opts FilterOptions) []Post {
	filtered := make([]Post, 0, len(posts))
	for _, post := range posts {
		if post.Over18 || post.Stickied {
			continue
		}
		if post.IsRemoved() {
			continue
		}
		if post.Score < opts.MinScore {
			continue
		}
		if opts.MinTextLength > 0 && post.IsSelf && len(post.SelfText) < opts.MinTextLength {
			continue
		}
		filtered = append(filtered, post)
	}
	return filtered
}
