package openlibrary

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lepinkainen/bookcatalog/internal/cache"
	"github.com/lepinkainen/bookcatalog/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, c *cache.CacheDB) (*Client, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Governor:   ratelimit.New("test", 0),
		Cache:      c,
	})
	return client, &hits
}

func TestLookupByISBN_Edition(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/9780441478125.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"key": "/books/OL7354024M",
			"title": "The Left Hand of Darkness",
			"covers": [42, 43],
			"description": {"type": "/type/text", "value": "X"},
			"number_of_pages": 304,
			"publishers": [{"name": "Ace Books"}],
			"works": [{"key": "/works/OL59863W"}]
		}`))
	})

	client, _ := newTestClient(t, mux, nil)
	rec := client.LookupByISBN(context.Background(), "9780441478125")
	require.NotNil(t, rec)

	assert.Equal(t, ShapeEdition, rec.Shape)
	assert.Equal(t, "/books/OL7354024M", rec.Key)
	assert.Equal(t, "/works/OL59863W", rec.WorkKey)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-L.jpg", rec.CoverURL)
	assert.Equal(t, 304, rec.PageCount)
	assert.Equal(t, "Ace Books", rec.Publisher)
}

func TestLookupByISBN_StringPublisherAndRemovedCover(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/0441478123.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"/books/OL1M","covers":[-1,17],"publishers":["Gollancz","Ace"],"description":"Plain text"}`))
	})

	client, _ := newTestClient(t, mux, nil)
	rec := client.LookupByISBN(context.Background(), "0441478123")
	require.NotNil(t, rec)

	assert.Equal(t, "https://covers.openlibrary.org/b/id/17-L.jpg", rec.CoverURL)
	assert.Equal(t, "Gollancz", rec.Publisher)
	assert.Empty(t, rec.WorkKey)
	assert.Zero(t, rec.PageCount)
}

func TestLookupByISBN_Failures(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"key": `))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, hits := newTestClient(t, tc.handler, nil)
			assert.Nil(t, client.LookupByISBN(context.Background(), "123"))
			assert.Equal(t, int32(1), atomic.LoadInt32(hits))
		})
	}
}

func TestLookupByISBN_FailureLogsStatus(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}), nil)
	assert.Nil(t, client.LookupByISBN(context.Background(), "123"))

	assert.Contains(t, logs.String(), "OpenLibrary ISBN lookup failed")
	assert.Contains(t, logs.String(), "status=503")
}

func TestLookupByISBN_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := New(Options{
		BaseURL:  server.URL,
		Timeout:  20 * time.Millisecond,
		Governor: ratelimit.New("test", 0),
	})
	assert.Nil(t, client.LookupByISBN(context.Background(), "123"))
}

func TestLookupByISBN_EmptyISBNMakesNoRequest(t *testing.T) {
	client, hits := newTestClient(t, http.NotFoundHandler(), nil)
	assert.Nil(t, client.LookupByISBN(context.Background(), "  "))
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestSearchByTitleAuthor(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Kindred", q.Get("title"))
		assert.Equal(t, "Octavia E. Butler", q.Get("author"))
		assert.Equal(t, "1", q.Get("limit"))
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{
			"key": "/works/OL59863W",
			"title": "Kindred",
			"cover_i": 99,
			"number_of_pages_median": 264,
			"publisher": ["Beacon Press", "Doubleday"]
		}]}`))
	})

	client, _ := newTestClient(t, mux, nil)
	rec := client.SearchByTitleAuthor(context.Background(), "Kindred", "Octavia E. Butler")
	require.NotNil(t, rec)

	assert.Equal(t, ShapeSearchResult, rec.Shape)
	assert.Equal(t, "/works/OL59863W", rec.Key)
	assert.Equal(t, "/works/OL59863W", rec.WorkKey)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/99-L.jpg", rec.CoverURL)
	assert.Equal(t, 264, rec.PageCount)
	assert.Equal(t, "Beacon Press", rec.Publisher)
}

func TestSearchByTitleAuthor_NoAuthorAndNoDocs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		_, hasAuthor := r.URL.Query()["author"]
		assert.False(t, hasAuthor)
		_, _ = w.Write([]byte(`{"numFound":0,"docs":[]}`))
	})

	client, hits := newTestClient(t, mux, nil)
	assert.Nil(t, client.SearchByTitleAuthor(context.Background(), "Unfindable", ""))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	assert.Nil(t, client.SearchByTitleAuthor(context.Background(), "", "Somebody"))
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestLookupWork(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/works/OL59863W.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"/works/OL59863W","title":"Kindred","description":{"value":"  A story.  "}}`))
	})

	client, _ := newTestClient(t, mux, nil)

	work := client.LookupWork(context.Background(), "/works/OL59863W")
	require.NotNil(t, work)
	assert.Equal(t, "A story.", work.Description)

	work = client.LookupWork(context.Background(), "works/OL59863W")
	require.NotNil(t, work)
	assert.Equal(t, "/works/OL59863W", work.Key)

	assert.Nil(t, client.LookupWork(context.Background(), "/works/missing"))
}

func TestLookupByISBN_UsesCache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	mux := http.NewServeMux()
	mux.HandleFunc("/isbn/111.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key":"/books/OL1M","covers":[5]}`))
	})
	mux.HandleFunc("/isbn/222.json", http.NotFound)

	client, hits := newTestClient(t, mux, c)
	ctx := context.Background()

	first := client.LookupByISBN(ctx, "111")
	second := client.LookupByISBN(ctx, "111")
	require.NotNil(t, first)
	assert.Equal(t, first, second)

	assert.Nil(t, client.LookupByISBN(ctx, "222"))
	assert.Nil(t, client.LookupByISBN(ctx, "222"))

	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "", description(nil))
	assert.Equal(t, "", description([]byte(`null`)))
	assert.Equal(t, "plain", description([]byte(`"plain"`)))
	assert.Equal(t, "nested", description([]byte(`{"type":"/type/text","value":"nested"}`)))
	assert.Equal(t, "", description([]byte(`42`)))
}
