package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchValidation(t *testing.T) {
	c := NewClient()

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := c.Search(context.Background(), "   ", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("over-long query rejected", func(t *testing.T) {
		_, err := c.Search(context.Background(), strings.Repeat("a", maxQueryLength+1), 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query too long")
	})
}

func TestSearchDuckDuckGo(t *testing.T) {
	t.Run("posts the form and parses the page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "go testing", r.PostForm.Get("q"))
			assert.NotEmpty(t, r.Header.Get("User-Agent"))

			fmt.Fprint(w, `<html><body>
<div class="result"><a class="result__a" href="https://example.com/one">One</a>
<a class="result__snippet" href="https://example.com/one">First hit</a></div>
<div class="result"><a class="result__a" href="https://example.com/two">Two</a>
<a class="result__snippet" href="https://example.com/two">Second hit</a></div>
</body></html>`)
		}))
		defer server.Close()

		c := NewClient()
		c.duckURL = server.URL

		results, err := c.Search(context.Background(), "go testing", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "One", results[0].Title)
		assert.Equal(t, "https://example.com/one", results[0].URL)
		assert.Equal(t, "First hit", results[0].Desc)
	})

	t.Run("empty page is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body></body></html>")
		}))
		defer server.Close()

		c := NewClient()
		c.duckURL = server.URL

		_, err := c.Search(context.Background(), "obscure", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no results found")
	})

	t.Run("http failure is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewClient()
		c.duckURL = server.URL

		_, err := c.Search(context.Background(), "anything", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 429")
	})
}

func TestSearchKagi(t *testing.T) {
	t.Run("used when a key is configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bot secret-key", r.Header.Get("Authorization"))
			assert.Equal(t, "climate data", r.URL.Query().Get("q"))

			fmt.Fprint(w, `{"data":[
{"t":0,"url":"https://example.com/a","title":"Alpha","snippet":"First"},
{"t":1,"list":["related"]},
{"t":0,"url":"https://example.com/b","title":"Beta","snippet":"Second"}
]}`)
		}))
		defer server.Close()

		c := NewClient(WithKagiAPIKey("secret-key"))
		c.kagiURL = server.URL

		results, err := c.Search(context.Background(), "climate data", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Alpha", results[0].Title)
		assert.Equal(t, "Beta", results[1].Title)
	})

	t.Run("non-result entries do not count against the limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data":[
{"t":1,"list":["x"]},
{"t":0,"url":"https://example.com/a","title":"A","snippet":"a"},
{"t":0,"url":"https://example.com/b","title":"B","snippet":"b"}
]}`)
		}))
		defer server.Close()

		c := NewClient(WithKagiAPIKey("k"))
		c.kagiURL = server.URL

		results, err := c.Search(context.Background(), "q", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "A", results[0].Title)
	})

	t.Run("error status surfaces body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusPaymentRequired)
		}))
		defer server.Close()

		c := NewClient(WithKagiAPIKey("k"))
		c.kagiURL = server.URL

		_, err := c.Search(context.Background(), "q", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestPing(t *testing.T) {
	t.Run("reachable backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
		}))
		defer server.Close()

		c := NewClient()
		c.duckURL = server.URL
		assert.NoError(t, c.Ping(context.Background()))
	})

	t.Run("server error is unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		c := NewClient()
		c.duckURL = server.URL
		assert.Error(t, c.Ping(context.Background()))
	})

	t.Run("unreachable backend is unhealthy", func(t *testing.T) {
		c := NewClient(WithTimeout(500 * time.Millisecond))
		c.duckURL = "http://127.0.0.1:1"
		assert.Error(t, c.Ping(context.Background()))
	})
}
