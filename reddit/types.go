package reddit

// Sort identifies a listing sort order
type Sort string

const (
	SortHot     Sort = "hot"
	SortTopDay  Sort = "top-day"
	SortTopWeek Sort = "top-week"
)

// Post represents a Reddit post as returned by the listing and info endpoints
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       int64   `json:"score"`
	NumComments int     `json:"num_comments"`
	Over18      bool    `json:"over_18"`
	Stickied    bool    `json:"stickied"`
	IsSelf      bool    `json:"is_self"`
	SelfText    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
}

// IsRemoved reports whether the post content was deleted or removed upstream
func (p *Post) IsRemoved() bool {
	return p.Author == "[deleted]" || p.SelfText == "[removed]" || p.SelfText == "[deleted]"
}

// Comment represents a Reddit comment
type Comment struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  int64  `json:"score"`
}

// Listing envelopes follow Reddit's "kind"/"data" JSON shape.

type listingEnvelope struct {
	Data struct {
		Children []postChild `json:"children"`
	} `json:"data"`
}

type postChild struct {
	Kind string `json:"kind"`
	Data Post   `json:"data"`
}

type commentListingEnvelope struct {
	Data struct {
		Children []commentChild `json:"children"`
	} `json:"data"`
}

type commentChild struct {
	Kind string  `json:"kind"`
	Data Comment `json:"data"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
