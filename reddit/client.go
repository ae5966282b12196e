package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL   = "https://oauth.reddit.com"

	requestTimeout = 10 * time.Second
	// Refresh the token slightly before Reddit expires it
	tokenExpiryMargin = 60 * time.Second
	maxRetries        = 3
)

var (
	// ErrAuth means gateway credentials are missing or rejected. Fatal for
	// the current cycle; the next scheduled run retries.
	ErrAuth = errors.New("reddit auth failed")

	// ErrTransport means a network failure, timeout or 5xx. Retryable and
	// isolated to the specific fetch.
	ErrTransport = errors.New("reddit transport error")
)

// Client defines the external content gateway operations. A nil *Post with a
// nil error signals the post was deleted or removed upstream, not a failure.
type Client interface {
	FetchListing(ctx context.Context, subreddit string, sort Sort, limit int) ([]Post, error)
	FetchPostByID(ctx context.Context, id string) (*Post, error)
	FetchComments(ctx context.Context, postID string, limit int) ([]Comment, error)
}

// HTTPClient implements Client against the live Reddit API using app-only
// client-credentials OAuth.
type HTTPClient struct {
	clientID     string
	clientSecret string
	userAgent    string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new Reddit API client
func NewClient(clientID, clientSecret, userAgent string) *HTTPClient {
	return &HTTPClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}
}

// NewClientWithURLs creates a client pointing at custom endpoints, for tests
func NewClientWithURLs(clientID, clientSecret, userAgent, tokenURL, apiURL string) *HTTPClient {
	c := NewClient(clientID, clientSecret, userAgent)
	c.tokenURL = tokenURL
	c.apiURL = apiURL
	return c
}

// getAccessToken returns a cached app-only token, fetching a fresh one when
// missing or near expiry.
func (c *HTTPClient) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("%w: missing client credentials", ErrAuth)
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request failed: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrAuth, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", ErrAuth, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned empty token", ErrAuth)
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpiryMargin)

	log.WithField("expires_in", token.ExpiresIn).Debug("Obtained Reddit access token")
	return c.accessToken, nil
}

// FetchListing fetches posts from a subreddit listing
func (c *HTTPClient) FetchListing(ctx context.Context, subreddit string, sort Sort, limit int) ([]Post, error) {
	path := listingPath(subreddit, sort, limit)

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		// Subreddit gone or private; treat as an empty listing
		return nil, nil
	}

	var envelope listingEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode listing for r/%s: %w", subreddit, err)
	}

	posts := make([]Post, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// FetchPostByID looks up a single post. Returns (nil, nil) when the post has
// been deleted or removed upstream.
func (c *HTTPClient) FetchPostByID(ctx context.Context, id string) (*Post, error) {
	path := fmt.Sprintf("/api/info?id=t3_%s&raw_json=1", url.QueryEscape(id))

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var envelope listingEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode post info for %s: %w", id, err)
	}
	if len(envelope.Data.Children) == 0 {
		return nil, nil
	}

	post := envelope.Data.Children[0].Data
	if post.IsRemoved() {
		return nil, nil
	}
	return &post, nil
}

// FetchComments fetches top-level comments for a post
func (c *HTTPClient) FetchComments(ctx context.Context, postID string, limit int) ([]Comment, error) {
	path := fmt.Sprintf("/comments/%s?limit=%d&depth=1&raw_json=1", url.PathEscape(postID), limit)

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	// The comments endpoint returns a two-element array: the post listing
	// followed by the comment listing.
	var envelopes []commentListingEnvelope
	if err := json.Unmarshal(body, &envelopes); err != nil {
		return nil, fmt.Errorf("failed to decode comments for %s: %w", postID, err)
	}
	if len(envelopes) < 2 {
		return nil, nil
	}

	comments := make([]Comment, 0, len(envelopes[1].Data.Children))
	for _, child := range envelopes[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		if child.Data.Body == "[deleted]" || child.Data.Body == "[removed]" {
			continue
		}
		comments = append(comments, child.Data)
	}
	return comments, nil
}

// get performs an authenticated GET against the API, retrying transport
// failures with exponential backoff. A nil body with a nil error means 404.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	var body []byte

	operation := func() error {
		token, err := c.getAccessToken(ctx)
		if err != nil {
			if errors.Is(err, ErrAuth) {
				return backoff.Permanent(err)
			}
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("%w: reading response body: %v", ErrTransport, err)
			}
			body = data
			return nil
		case resp.StatusCode == http.StatusNotFound:
			// Not an error: the content is gone upstream
			body = nil
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Token may have been revoked; drop it so the next attempt re-authenticates
			c.mu.Lock()
			c.accessToken = ""
			c.mu.Unlock()
			return fmt.Errorf("%w: API returned %d", ErrAuth, resp.StatusCode)
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: API returned %d", ErrTransport, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("%w: API returned %d", ErrTransport, resp.StatusCode))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return body, nil
}

// listingPath maps a sort to the corresponding listing endpoint path
func listingPath(subreddit string, sort Sort, limit int) string {
	sub := url.PathEscape(subreddit)
	switch sort {
	case SortTopDay:
		return fmt.Sprintf("/r/%s/top?t=day&limit=%d&raw_json=1", sub, limit)
	case SortTopWeek:
		return fmt.Sprintf("/r/%s/top?t=week&limit=%d&raw_json=1", sub, limit)
	default:
		return fmt.Sprintf("/r/%s/hot?limit=%d&raw_json=1", sub, limit)
	}
}
