// Package googlebooks is the secondary metadata source, queried through the
// single volumes search endpoint of the Google Books API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/bookcatalog/internal/cache"
	"github.com/lepinkainen/bookcatalog/internal/config"
	"github.com/lepinkainen/bookcatalog/internal/errors"
	"github.com/lepinkainen/bookcatalog/internal/ratelimit"
)

const sourceName = "Google Books"

// Volume is the normalized first search hit.
type Volume struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
}

// volumesResponse matches the Google Books API response structure.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo volumeInfo `json:"volumeInfo"`
	} `json:"items"`
}

type volumeInfo struct {
	Title       string            `json:"title"`
	Publisher   string            `json:"publisher"`
	Description string            `json:"description"`
	PageCount   int               `json:"pageCount"`
	ImageLinks  map[string]string `json:"imageLinks"`
}

// Options configures a Client. Zero values fall back to the defaults in
// internal/config.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Governor   *ratelimit.Governor
	Cache      *cache.CacheDB
}

// Client queries the Google Books volumes endpoint.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	governor *ratelimit.Governor
	cache    *cache.CacheDB
}

// New creates a Client.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultGoogleBooksBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = config.DefaultRequestTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	governor := opts.Governor
	if governor == nil {
		governor = ratelimit.New(sourceName, ratelimit.DefaultDelay)
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   opts.APIKey,
		http:     httpClient,
		governor: governor,
		cache:    opts.Cache,
	}
}

// BuildQuery picks the most specific query available: isbn, then title with
// author, then title alone. It returns "" when nothing usable is given.
func BuildQuery(isbn, title, author string) string {
	isbn = strings.TrimSpace(isbn)
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	switch {
	case isbn != "":
		return "isbn:" + isbn
	case title != "" && author != "":
		return fmt.Sprintf("intitle:%s inauthor:%s", title, author)
	case title != "":
		return "intitle:" + title
	default:
		return ""
	}
}

// CoverURL picks the largest image link and asks Google for a sharper,
// uncurled rendering.
func CoverURL(links map[string]string) string {
	for _, size := range []string{"large", "medium", "thumbnail"} {
		link, ok := links[size]
		if !ok || link == "" {
			continue
		}
		link = strings.ReplaceAll(link, "&edge=curl", "")
		return strings.ReplaceAll(link, "zoom=1", "zoom=2")
	}
	return ""
}

type cachedVolume struct {
	Volume   *Volume `json:"volume,omitempty"`
	NotFound bool    `json:"not_found"`
}

// Search returns the first volume matching the best available query, or nil
// when nothing matches, no input is given or the request fails.
func (c *Client) Search(ctx context.Context, isbn, title, author string) *Volume {
	query := BuildQuery(isbn, title, author)
	if query == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "1")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/volumes?" + params.Encode()

	result, _, err := cache.GetOrFetch(ctx, c.cache, cache.GoogleBooksTable, strings.ToLower(query),
		func(ctx context.Context) (*cachedVolume, error) {
			var resp volumesResponse
			if err := c.getJSON(ctx, endpoint, query, &resp); err != nil {
				if errors.IsNotFoundError(err) {
					return &cachedVolume{NotFound: true}, nil
				}
				return nil, err
			}
			if len(resp.Items) == 0 {
				return &cachedVolume{NotFound: true}, nil
			}
			info := resp.Items[0].VolumeInfo
			return &cachedVolume{Volume: &Volume{
				Title:       info.Title,
				Description: strings.TrimSpace(info.Description),
				CoverURL:    CoverURL(info.ImageLinks),
				PageCount:   max(info.PageCount, 0),
				Publisher:   strings.TrimSpace(info.Publisher),
			}}, nil
		},
		cache.SelectNegativeCacheTTL(c.cache.TTL(), func(r *cachedVolume) bool { return r.NotFound }))

	if err != nil {
		if errors.IsRateLimitError(err) {
			slog.Warn("Google Books quota exhausted, set googlebooks.apikey for a higher limit", "query", query)
			return nil
		}
		if errors.IsHTTPStatusError(err) {
			slog.Warn("Google Books search failed", "query", query, "status", errors.StatusCode(err), "error", err)
			return nil
		}
		slog.Warn("Google Books search failed", "query", query, "error", err)
		return nil
	}
	if result == nil || result.NotFound {
		slog.Debug("Google Books found nothing", "query", query)
		return nil
	}
	return result.Volume
}

func (c *Client) getJSON(ctx context.Context, endpoint, query string, dst any) error {
	if err := c.governor.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	slog.Debug("Google Books request", "query", query)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return errors.NewNotFoundError(sourceName, query)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.NewRateLimitError(sourceName + " rate limit reached")
	}
	if resp.StatusCode != http.StatusOK {
		// The endpoint URL may carry the API key, so only the path is reported.
		return errors.NewHTTPStatusError(sourceName, resp.StatusCode, req.URL.Path)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
