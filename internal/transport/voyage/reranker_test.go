package voyage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/hybridex/internal/domain"
)

func newServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestReranker(url string) *Reranker {
	return NewReranker(Config{APIKey: "test-key", BaseURL: url, Model: "rerank-test"})
}

func TestRerank_Request(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rerank", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "hybridex/"))

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pressing", req.Query)
		assert.Equal(t, []string{"a", "b", "c"}, req.Documents)
		assert.Equal(t, "rerank-test", req.Model)
		assert.Equal(t, 3, req.TopK)

		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"index":2,"relevance_score":0.9},
			{"index":0,"relevance_score":0.4},
			{"index":1,"relevance_score":0.1}]}`))
	}))
	defer srv.Close()

	hits, err := newTestReranker(srv.URL + "/").Rerank(context.Background(), "pressing", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []domain.RerankHit{
		{Index: 2, Score: 0.9},
		{Index: 0, Score: 0.4},
		{Index: 1, Score: 0.1},
	}, hits)
}

func TestRerank_ResultsKey(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"results":[{"index":0,"relevance_score":0.5}]}`)

	hits, err := newTestReranker(srv.URL).Rerank(context.Background(), "q", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []domain.RerankHit{{Index: 0, Score: 0.5}}, hits)
}

func TestRerank_EmptyDocumentsSkipsCall(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"data":[]}`)

	hits, err := newTestReranker(srv.URL).Rerank(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Zero(t, calls.Load())
}

func TestRerank_MissingAPIKey(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"data":[]}`)
	r := NewReranker(Config{BaseURL: srv.URL})

	_, err := r.Rerank(context.Background(), "q", []string{"a"})
	require.ErrorIs(t, err, domain.ErrRerankUnavailable)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, calls.Load())
	assert.False(t, r.IsConfigured())
	assert.ErrorIs(t, r.HealthCheck(context.Background()), domain.ErrConfiguration)
}

func TestRerank_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no list", `{"object":"list"}`},
		{"null list", `{"data":null}`},
		{"object instead of array", `{"data":{"index":0}}`},
		{"string instead of array", `{"results":"oops"}`},
		{"missing score", `{"data":[{"index":0}]}`},
		{"missing index", `{"data":[{"relevance_score":0.3}]}`},
		{"index out of range", `{"data":[{"index":5,"relevance_score":0.3}]}`},
		{"not json", `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, http.StatusOK, tt.body)
			_, err := newTestReranker(srv.URL).Rerank(context.Background(), "q", []string{"a", "b"})
			require.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestRerank_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
		message     string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"detail":"slow down"}`, true, "slow down"},
		{"server error", http.StatusInternalServerError, `boom`, true, "boom"},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad model"}}`, false, "bad model"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid key"}`, false, "invalid key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newServer(t, tt.status, tt.body)
			_, err := newTestReranker(srv.URL).Rerank(context.Background(), "q", []string{"a"})
			require.ErrorIs(t, err, domain.ErrRerankProviderError)
			assert.Equal(t, tt.unavailable, errors.Is(err, domain.ErrCollaboratorUnavailable))
			assert.Contains(t, err.Error(), tt.message)
			assert.EqualValues(t, 1, calls.Load(), "no retries")
		})
	}
}

func TestRerank_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestReranker(srv.URL).Rerank(ctx, "q", []string{"a"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
}

func TestRerank_RateLimiterHonoursContext(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"data":[{"index":0,"relevance_score":1}]}`)
	r := NewReranker(Config{APIKey: "k", BaseURL: srv.URL, RequestsPerSecond: 0.001, Burst: 1})

	_, err := r.Rerank(context.Background(), "q", []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = r.Rerank(ctx, "q", []string{"a"})
	require.ErrorIs(t, err, domain.ErrCollaboratorUnavailable)
	assert.EqualValues(t, 1, calls.Load(), "throttled call never reaches the server")
}

func TestNewReranker_Defaults(t *testing.T) {
	r := NewReranker(Config{APIKey: "k"})
	assert.Equal(t, DefaultBaseURL+"/rerank", r.url)
	assert.Equal(t, DefaultModel, r.model)
	assert.Nil(t, r.limiter)
	assert.Equal(t, DefaultTimeout, r.client.Timeout)
	assert.True(t, r.IsConfigured())
	assert.NoError(t, r.HealthCheck(context.Background()))
}
