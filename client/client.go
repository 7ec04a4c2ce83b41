package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultBaseURL   = "https://www.crunchyroll.com"
	defaultUserAgent = "crunchdl/1.0"

	defaultCacheSize = 256
	defaultCacheTTL  = 10 * time.Minute
)

// Config holds configuration for the catalog client.
type Config struct {
	// HTTPClient is the client used for making requests.
	// If nil, a default client is built (honoring ProxyURL).
	HTTPClient *http.Client

	// BaseURL overrides the API host. Mostly useful for tests.
	BaseURL string

	// ProxyURL is the optional proxy URL to use for requests.
	// If HTTPClient is provided, this field is ignored.
	ProxyURL string

	// UserAgent is sent with every request.
	UserAgent string

	// RequestTimeout bounds a single API call when the caller's context
	// carries no deadline.
	RequestTimeout time.Duration

	// CacheSize and CacheTTL tune the in-memory response cache. The
	// catalog is walked top-down, so season and episode listings are
	// requested repeatedly; caching keeps the walk cheap.
	CacheSize int
	CacheTTL  time.Duration

	// DisableCache turns response caching off entirely.
	DisableCache bool
}

// Client is the remote catalog client. It enumerates series, seasons,
// episodes and movies and fetches stream manifests.
type Client struct {
	config Config
	http   *http.Client
	cache  *lru.LRU[string, []byte]
}

// New creates a catalog client.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient(config.ProxyURL)
	}

	var cache *lru.LRU[string, []byte]
	if !config.DisableCache {
		size := config.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		ttl := config.CacheTTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		cache = lru.NewLRU[string, []byte](size, nil, ttl)
	}

	return &Client{config: config, http: httpClient, cache: cache}
}

// HTTPClient exposes the underlying HTTP client so media payload
// downloads share the same transport and proxy settings.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

func defaultHTTPClient(proxyURL string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if proxy, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		}
	}
	return &http.Client{Transport: transport}
}

// Series fetches a single series by id.
func (c *Client) Series(ctx context.Context, seriesID string) (Series, error) {
	var series Series
	if err := c.getJSON(ctx, "/content/v2/series/"+url.PathEscape(seriesID), &series); err != nil {
		return Series{}, fmt.Errorf("series %s: %w", seriesID, err)
	}
	return series, nil
}

// Seasons fetches all seasons of a series, in catalog order.
func (c *Client) Seasons(ctx context.Context, seriesID string) ([]Season, error) {
	var list listResponse[Season]
	if err := c.getJSON(ctx, "/content/v2/series/"+url.PathEscape(seriesID)+"/seasons", &list); err != nil {
		return nil, fmt.Errorf("seasons of series %s: %w", seriesID, err)
	}
	return list.Items, nil
}

// Episodes fetches all episodes of a season, in catalog order.
func (c *Client) Episodes(ctx context.Context, seasonID string) ([]Episode, error) {
	var list listResponse[Episode]
	if err := c.getJSON(ctx, "/content/v2/seasons/"+url.PathEscape(seasonID)+"/episodes", &list); err != nil {
		return nil, fmt.Errorf("episodes of season %s: %w", seasonID, err)
	}
	return list.Items, nil
}

// MovieListing fetches a movie listing by id.
func (c *Client) MovieListing(ctx context.Context, listingID string) (MovieListing, error) {
	var listing MovieListing
	if err := c.getJSON(ctx, "/content/v2/movie_listings/"+url.PathEscape(listingID), &listing); err != nil {
		return MovieListing{}, fmt.Errorf("movie listing %s: %w", listingID, err)
	}
	return listing, nil
}

// Movies fetches the member movies of a listing.
func (c *Client) Movies(ctx context.Context, listingID string) ([]Movie, error) {
	var list listResponse[Movie]
	if err := c.getJSON(ctx, "/content/v2/movie_listings/"+url.PathEscape(listingID)+"/movies", &list); err != nil {
		return nil, fmt.Errorf("movies of listing %s: %w", listingID, err)
	}
	return list.Items, nil
}

// Manifest fetches the stream manifest for a playable entity. When
// subtitle is non-empty the server restricts the variant list to
// renditions compatible with that subtitle track.
func (c *Client) Manifest(ctx context.Context, mediaID string, subtitle Locale) (*StreamManifest, error) {
	path := "/playback/v2/" + url.PathEscape(mediaID) + "/manifest"
	if subtitle != "" {
		path += "?subtitle=" + url.QueryEscape(string(subtitle))
	}
	var manifest StreamManifest
	if err := c.getJSON(ctx, path, &manifest); err != nil {
		return nil, fmt.Errorf("manifest of %s: %w", mediaID, err)
	}
	return &manifest, nil
}

type listResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// watchObject is the polymorphic payload behind /content/v2/objects/{id};
// a watch URL can point to either an episode or a movie.
type watchObject struct {
	Type    string   `json:"type"`
	Episode *Episode `json:"episode,omitempty"`
	Movie   *Movie   `json:"movie,omitempty"`
}

func (c *Client) object(ctx context.Context, mediaID string) (MediaCollection, error) {
	var obj watchObject
	if err := c.getJSON(ctx, "/content/v2/objects/"+url.PathEscape(mediaID), &obj); err != nil {
		return nil, fmt.Errorf("object %s: %w", mediaID, err)
	}
	switch {
	case obj.Type == "episode" && obj.Episode != nil:
		return *obj.Episode, nil
	case obj.Type == "movie" && obj.Movie != nil:
		return *obj.Movie, nil
	}
	return nil, fmt.Errorf("object %s: unsupported type %q", mediaID, obj.Type)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(path); ok {
			return body, nil
		}
	}

	ctx, cancel := withDefaultTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("request failed: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Add(path, body)
	}
	return body, nil
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
