package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/metrics"
	"github.com/kailas-cloud/hybridex/internal/version"
)

// Reranker defaults.
const (
	DefaultBaseURL = "https://api.voyageai.com/v1"
	DefaultModel   = "rerank-2"
	DefaultTimeout = 30 * time.Second

	provider = "voyage"

	// maxErrorBody caps how much of an error response is kept for messages.
	maxErrorBody = 512
)

// Config holds the reranking provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing calls client-side; 0 disables throttling.
	RequestsPerSecond float64
	Burst             int

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Reranker calls a Voyage-compatible /rerank endpoint.
type Reranker struct {
	client  *http.Client
	apiKey  string
	url     string
	model   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewReranker creates a reranking client. A missing API key is not an error
// here; every call then fails with ErrConfiguration.
func NewReranker(cfg Config) *Reranker {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Reranker{
		client:  client,
		apiKey:  cfg.APIKey,
		url:     strings.TrimRight(base, "/") + "/rerank",
		model:   model,
		limiter: limiter,
		logger:  logger,
	}
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model"`
	TopK      int      `json:"top_k,omitempty"`
}

type rerankResponse struct {
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

type rerankItem struct {
	Index          *int     `json:"index"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// Rerank implements domain.Reranker. Every document is scored; hits carry the
// position of the document in the submitted slice.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string) ([]domain.RerankHit, error) {
	if r.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not set: %w", domain.ErrRerankUnavailable, domain.ErrConfiguration)
	}
	if len(documents) == 0 {
		return []domain.RerankHit{}, nil
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rerank rate limit wait: %w: %w", domain.ErrCollaboratorUnavailable, err)
		}
	}

	body, err := json.Marshal(rerankRequest{
		Query:     query,
		Documents: documents,
		Model:     r.model,
		TopK:      len(documents),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	start := time.Now()
	hits, err := r.do(ctx, body, len(documents))
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		r.logger.Warn("Rerank request failed",
			zap.String("model", r.model),
			zap.Int("documents", len(documents)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
	metrics.RerankRequestsTotal.WithLabelValues(provider, r.model, status).Inc()
	metrics.RerankRequestDuration.WithLabelValues(provider, r.model).Observe(duration.Seconds())

	return hits, err
}

func (r *Reranker) do(ctx context.Context, body []byte, n int) ([]domain.RerankHit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rerank request failed: %w: %w: %w",
			domain.ErrRerankProviderError, domain.ErrCollaboratorUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w: %w: %w",
			domain.ErrRerankProviderError, domain.ErrCollaboratorUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw)
	}

	return parseResponse(raw, n)
}

// parseResponse reads the result list from "data" (or "results").
// A missing or non-array list is ErrMalformedResponse.
func parseResponse(raw []byte, n int) ([]domain.RerankHit, error) {
	var parsed rerankResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode rerank response: %w: %w", domain.ErrMalformedResponse, err)
	}

	list := parsed.Data
	if isAbsent(list) {
		list = parsed.Results
	}
	if isAbsent(list) {
		return nil, fmt.Errorf("rerank response has no result list: %w", domain.ErrMalformedResponse)
	}

	var items []rerankItem
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, fmt.Errorf("rerank result list is not an array: %w", domain.ErrMalformedResponse)
	}

	hits := make([]domain.RerankHit, 0, len(items))
	for i, it := range items {
		if it.Index == nil || it.RelevanceScore == nil {
			return nil, fmt.Errorf("rerank result %d lacks index or relevance_score: %w", i, domain.ErrMalformedResponse)
		}
		if *it.Index < 0 || *it.Index >= n {
			return nil, fmt.Errorf("rerank index %d outside [0, %d): %w", *it.Index, n, domain.ErrMalformedResponse)
		}
		hits = append(hits, domain.RerankHit{Index: *it.Index, Score: *it.RelevanceScore})
	}
	return hits, nil
}

func isAbsent(m json.RawMessage) bool {
	s := strings.TrimSpace(string(m))
	return s == "" || s == "null"
}

func statusError(status int, body []byte) error {
	msg := extractMessage(body)
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("rerank API error %d: %s: %w: %w",
			status, msg, domain.ErrRerankProviderError, domain.ErrCollaboratorUnavailable)
	}
	return fmt.Errorf("rerank API error %d: %s: %w", status, msg, domain.ErrRerankProviderError)
}

// extractMessage returns "detail" or "error" from a JSON error body, or the truncated body.
func extractMessage(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  any    `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		switch e := parsed.Error.(type) {
		case string:
			return e
		case map[string]any:
			if m, ok := e["message"].(string); ok {
				return m
			}
		}
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}

// HealthCheck reports missing credentials. The provider has no free liveness endpoint.
func (r *Reranker) HealthCheck(_ context.Context) error {
	if r.apiKey == "" {
		return fmt.Errorf("%w: api key is not set: %w", domain.ErrRerankUnavailable, domain.ErrConfiguration)
	}
	return nil
}

// IsConfigured reports whether the client has credentials.
func (r *Reranker) IsConfigured() bool { return r.apiKey != "" }

var _ domain.Reranker = (*Reranker)(nil)
