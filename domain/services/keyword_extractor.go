package services

import (
	"sort"
	"strings"
	"unicode"

	"gamerit/reddit"
)

// Significance thresholds for a keyword to become (or stay) a tradable stock
const (
	minKeywordPosts = 2 // distinct posts containing the keyword
	minKeywordCount = 3 // total occurrences across all titles
	minTokenLength  = 4
)

// KeywordSignal aggregates the trend signals for one keyword
type KeywordSignal struct {
	Keyword    string
	Count      int   // total occurrences across titles
	TotalScore int64 // summed score of posts containing the keyword
	PostCount  int   // distinct posts containing the keyword
}

// IsSignificant reports whether the keyword clears the trend thresholds
func (ks *KeywordSignal) IsSignificant() bool {
	return ks.PostCount >= minKeywordPosts && ks.Count >= minKeywordCount
}

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "been": {},
	"were": {}, "they": {}, "them": {}, "your": {}, "what": {}, "when": {},
	"will": {}, "just": {}, "like": {}, "about": {}, "would": {}, "there": {},
	"their": {}, "which": {}, "after": {}, "before": {}, "because": {},
	"here": {}, "some": {}, "more": {}, "than": {}, "then": {}, "into": {},
	"over": {}, "only": {}, "also": {}, "very": {}, "every": {}, "these": {},
	"those": {}, "making": {}, "made": {}, "makes": {}, "gets": {}, "getting": {},
	"reddit": {}, "upvote": {}, "upvotes": {}, "post": {}, "posts": {},
}

// ExtractKeywords tokenizes a post title into candidate keywords: lowercase
// alphanumeric runs, stop-words and short tokens dropped.
func ExtractKeywords(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	keywords := make([]string, 0, len(fields))
	for _, token := range fields {
		if len(token) < minTokenLength {
			continue
		}
		if _, ok := stopWords[token]; ok {
			continue
		}
		keywords = append(keywords, token)
	}
	return keywords
}

// AggregateKeywords builds per-keyword signals from a batch of posts
func AggregateKeywords(posts []reddit.Post) map[string]*KeywordSignal {
	signals := make(map[string]*KeywordSignal)
	for _, post := range posts {
		tokens := ExtractKeywords(post.Title)
		seenInPost := make(map[string]struct{}, len(tokens))
		for _, token := range tokens {
			signal, ok := signals[token]
			if !ok {
				signal = &KeywordSignal{Keyword: token}
				signals[token] = signal
			}
			signal.Count++
			if _, counted := seenInPost[token]; !counted {
				seenInPost[token] = struct{}{}
				signal.PostCount++
				signal.TotalScore += post.Score
			}
		}
	}
	return signals
}

// RankSignificant filters the signals to significant keywords and orders
// them by total score, keyword as tiebreaker for determinism.
func RankSignificant(signals map[string]*KeywordSignal) []*KeywordSignal {
	ranked := make([]*KeywordSignal, 0, len(signals))
	for _, signal := range signals {
		if signal.IsSignificant() {
			ranked = append(ranked, signal)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})
	return ranked
}
