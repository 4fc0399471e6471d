// Package spotify resolves emotion labels to playlist URLs against the
// Spotify Web API, degrading to a curated table whenever the live path fails.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/moodlens/internal/cache"
	"github.com/ewilliams-labs/moodlens/internal/core/domain"
	"github.com/ewilliams-labs/moodlens/internal/core/ports"
	"github.com/ewilliams-labs/moodlens/internal/metrics"
)

var (
	errUnknownLabel  = errors.New("spotify: unrecognized emotion label")
	errNoCredentials = errors.New("spotify: credentials not configured")
	errEmptyResults  = errors.New("spotify: search returned no playlists")
)

// Config tunes the client. Zero values get usable defaults.
type Config struct {
	TokenURL          string
	BaseURL           string
	SearchLimit       int
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
	CacheCapacity     int
}

// Client is the live playlist source. Its mutable state (credentials, token
// source, cache) is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[string]
	cache      *cache.LRU
	logger     *log.Logger

	mu          sync.Mutex
	creds       ports.Credentials
	tokenSource oauth2.TokenSource
}

var _ ports.PlaylistSource = (*Client)(nil)

// NewClient constructs the client with the given starting credentials, which
// may be absent; every lookup then resolves to the curated table until
// SetCredentials provides a usable pair.
func NewClient(cfg Config, creds ports.Credentials, logger *log.Logger) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://accounts.spotify.com/api/token"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.spotify.com/v1"
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:      cache.NewLRU(cfg.CacheCapacity),
		logger:     logger.With("component", "spotify"),
	}
	c.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "spotify-search",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state change", "from", from.String(), "to", to.String())
		},
	})
	c.setCredentialsLocked(creds)
	return c
}

// SetCredentials swaps the credential pair, rebuilds the token source and
// purges the cache so live results from the old account do not linger.
func (c *Client) SetCredentials(creds ports.Credentials) {
	c.mu.Lock()
	c.setCredentialsLocked(creds)
	c.mu.Unlock()
	c.cache.Purge()
}

func (c *Client) setCredentialsLocked(creds ports.Credentials) {
	c.creds = creds
	if !creds.Present() {
		c.tokenSource = nil
		return
	}
	conf := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.cfg.TokenURL,
	}
	// The token source tracks expiry and re-exchanges proactively, so a
	// long-lived process never reuses an expired token.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	c.tokenSource = conf.TokenSource(ctx)
}

// Authenticate eagerly exchanges credentials for a token. Lookups do not
// require calling this first; it exists so startup and settings updates can
// surface an auth problem immediately.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	src := c.tokenSource
	c.mu.Unlock()

	if src == nil {
		return nil, errNoCredentials
	}
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("spotify: token exchange: %w", err)
	}
	return tok, nil
}

// PlaylistForEmotion resolves label to a playlist URL. It never fails: any
// problem on the live path resolves to the curated table with Fallback set
// and Reason carrying the cause.
func (c *Client) PlaylistForEmotion(ctx context.Context, label domain.EmotionLabel) domain.Recommendation {
	if !label.Known() {
		metrics.FallbacksTotal.Inc()
		return domain.Recommendation{
			Emotion:  domain.EmotionNeutral,
			URL:      domain.CuratedPlaylist(domain.EmotionNeutral),
			Fallback: true,
			Reason:   errUnknownLabel,
		}
	}

	if url, ok := c.cache.Get(string(label)); ok {
		metrics.CacheHits.Inc()
		return domain.Recommendation{Emotion: label, URL: url}
	}
	metrics.CacheMisses.Inc()

	url, err := c.searchPlaylist(ctx, label)
	if err != nil {
		c.logger.Warn("live lookup failed, serving curated playlist", "emotion", label, "err", err)
		metrics.FallbacksTotal.Inc()
		return domain.Recommendation{
			Emotion:  label,
			URL:      domain.CuratedPlaylist(label),
			Fallback: true,
			Reason:   err,
		}
	}

	// Only live results are cached; a cached fallback would mask recovery.
	c.cache.Add(string(label), url)
	return domain.Recommendation{Emotion: label, URL: url}
}

func (c *Client) searchPlaylist(ctx context.Context, label domain.EmotionLabel) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("spotify: rate limit wait: %w", err)
	}

	return c.breaker.Execute(func() (string, error) {
		tok, err := c.token(ctx)
		if err != nil {
			return "", err
		}
		return c.doSearch(ctx, tok, label)
	})
}

func (c *Client) doSearch(ctx context.Context, tok *oauth2.Token, label domain.EmotionLabel) (string, error) {
	searchURL, err := url.Parse(c.cfg.BaseURL + "/search")
	if err != nil {
		return "", fmt.Errorf("spotify: invalid search url: %w", err)
	}

	query := searchURL.Query()
	query.Set("q", searchQuery(label))
	query.Set("type", "playlist")
	query.Set("limit", strconv.Itoa(c.cfg.SearchLimit))
	searchURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("spotify: build search request: %w", err)
	}
	tok.SetAuthHeader(req)

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return "", fmt.Errorf("spotify: search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Drop the cached token so the next attempt re-exchanges.
		c.mu.Lock()
		c.setCredentialsLocked(c.creds)
		c.mu.Unlock()
		return "", fmt.Errorf("spotify: search rejected with status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify: search status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("spotify: search decode error: %w", err)
	}

	for _, item := range body.Playlists.Items {
		if item.ExternalURLs.Spotify != "" {
			return item.ExternalURLs.Spotify, nil
		}
	}
	return "", errEmptyResults
}

// searchQuery pairs the emotion with its first genre keyword, e.g. "angry rock".
func searchQuery(label domain.EmotionLabel) string {
	keywords := domain.GenreKeywords[label]
	if len(keywords) == 0 {
		return string(label)
	}
	return string(label) + " " + keywords[0]
}
