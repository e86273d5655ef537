// Package openlibrary is the primary metadata source: edition lookup by ISBN,
// title/author search and work lookup against the OpenLibrary JSON API.
//
// Every lookup degrades to nil on failure. Not-found answers are logged at
// debug level, everything else at warn.
package openlibrary

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

const sourceName = "OpenLibrary"

// Options configures a Client. Zero values fall back to the defaults in
// internal/config.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Governor   *ratelimit.Governor
	Cache      *cache.CacheDB
}

// Client talks to the OpenLibrary API.
type Client struct {
	baseURL  string
	http     *http.Client
	governor *ratelimit.Governor
	cache    *cache.CacheDB
}

// New creates a Client. The governor should be shared with every other
// adapter used in the same run.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultOpenLibraryBaseURL
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
		http:     httpClient,
		governor: governor,
		cache:    opts.Cache,
	}
}

// cachedRecord wraps a lookup result so "not found" can be cached too.
type cachedRecord struct {
	Record   *Record `json:"record,omitempty"`
	NotFound bool    `json:"not_found"`
}

type cachedWork struct {
	Work     *Work `json:"work,omitempty"`
	NotFound bool  `json:"not_found"`
}

// LookupByISBN fetches the edition for isbn. It returns nil when the ISBN is
// unknown or the request fails.
func (c *Client) LookupByISBN(ctx context.Context, isbn string) *Record {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, url.PathEscape(isbn))
	result, _, err := cache.GetOrFetch(ctx, c.cache, cache.OpenLibraryTable, "isbn:"+isbn,
		func(ctx context.Context) (*cachedRecord, error) {
			var edition editionResponse
			if err := c.getJSON(ctx, endpoint, isbn, &edition); err != nil {
				if errors.IsNotFoundError(err) {
					return &cachedRecord{NotFound: true}, nil
				}
				return nil, err
			}
			return &cachedRecord{Record: edition.record()}, nil
		},
		cache.SelectNegativeCacheTTL(c.cache.TTL(), func(r *cachedRecord) bool { return r.NotFound }))

	if err != nil {
		warnFailed("OpenLibrary ISBN lookup failed", err, "isbn", isbn)
		return nil
	}
	if result == nil || result.NotFound {
		slog.Debug("OpenLibrary has no edition for ISBN", "isbn", isbn)
		return nil
	}
	return result.Record
}

// SearchByTitleAuthor searches by title and optional author and returns the
// first document, or nil when nothing matches or the request fails.
func (c *Client) SearchByTitleAuthor(ctx context.Context, title, author string) *Record {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" {
		return nil
	}

	params := url.Values{}
	params.Set("title", title)
	if author != "" {
		params.Set("author", author)
	}
	params.Set("limit", "1")
	endpoint := c.baseURL + "/search.json?" + params.Encode()

	key := "search:" + strings.ToLower(title) + "|" + strings.ToLower(author)
	result, _, err := cache.GetOrFetch(ctx, c.cache, cache.OpenLibraryTable, key,
		func(ctx context.Context) (*cachedRecord, error) {
			var resp searchResponse
			if err := c.getJSON(ctx, endpoint, title, &resp); err != nil {
				if errors.IsNotFoundError(err) {
					return &cachedRecord{NotFound: true}, nil
				}
				return nil, err
			}
			if len(resp.Docs) == 0 {
				return &cachedRecord{NotFound: true}, nil
			}
			return &cachedRecord{Record: resp.Docs[0].record()}, nil
		},
		cache.SelectNegativeCacheTTL(c.cache.TTL(), func(r *cachedRecord) bool { return r.NotFound }))

	if err != nil {
		warnFailed("OpenLibrary search failed", err, "title", title, "author", author)
		return nil
	}
	if result == nil || result.NotFound {
		slog.Debug("OpenLibrary search found nothing", "title", title, "author", author)
		return nil
	}
	return result.Record
}

// LookupWork fetches the work resource, e.g. "/works/OL45883W".
func (c *Client) LookupWork(ctx context.Context, workKey string) *Work {
	workKey = strings.TrimSpace(workKey)
	if workKey == "" {
		return nil
	}
	if !strings.HasPrefix(workKey, "/") {
		workKey = "/" + workKey
	}

	endpoint := c.baseURL + workKey + ".json"
	result, _, err := cache.GetOrFetch(ctx, c.cache, cache.OpenLibraryTable, "work:"+workKey,
		func(ctx context.Context) (*cachedWork, error) {
			var resp workResponse
			if err := c.getJSON(ctx, endpoint, workKey, &resp); err != nil {
				if errors.IsNotFoundError(err) {
					return &cachedWork{NotFound: true}, nil
				}
				return nil, err
			}
			return &cachedWork{Work: resp.work()}, nil
		},
		cache.SelectNegativeCacheTTL(c.cache.TTL(), func(r *cachedWork) bool { return r.NotFound }))

	if err != nil {
		warnFailed("OpenLibrary work lookup failed", err, "work", workKey)
		return nil
	}
	if result == nil || result.NotFound {
		slog.Debug("OpenLibrary work not found", "work", workKey)
		return nil
	}
	return result.Work
}

// warnFailed logs a failed request, with the HTTP status when the server
// answered with one.
func warnFailed(msg string, err error, attrs ...any) {
	if errors.IsHTTPStatusError(err) {
		attrs = append(attrs, "status", errors.StatusCode(err))
	}
	slog.Warn(msg, append(attrs, "error", err)...)
}

// getJSON waits for the governor, performs a GET and decodes the body into
// dst. 404 becomes a NotFoundError and any other non-2xx an HTTPStatusError.
func (c *Client) getJSON(ctx context.Context, endpoint, lookupKey string, dst any) error {
	if err := c.governor.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("OpenLibrary request", "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return errors.NewNotFoundError(sourceName, lookupKey)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.NewRateLimitError(sourceName + " rate limit reached")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.NewHTTPStatusError(sourceName, resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
