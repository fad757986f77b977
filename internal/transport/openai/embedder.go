package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/metrics"
)

// Embedder is an embedding provider using the OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	apiKey     string
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
// A missing API key is not an error here; every call then fails with ErrConfiguration.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		apiKey:     cfg.APIKey,
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   provider,
		logger:     logger,
	}
}

// Embed implements domain.Embedder for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if e.apiKey == "" {
		e.record(metrics.EmbedConfiguration, 0)
		return domain.EmbeddingResult{}, fmt.Errorf("%w: api key is not set: %w",
			domain.ErrEmbeddingUnavailable, domain.ErrConfiguration)
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		e.record(metrics.EmbedAPIError, elapsed)
		e.logger.Debug("embedding call failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return domain.EmbeddingResult{}, parseAPIError(err)
	case len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0:
		e.record(metrics.EmbedEmptyResponse, elapsed)
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w: %w",
			domain.ErrEmbeddingProviderError, domain.ErrMalformedResponse)
	}

	e.record(metrics.EmbedOK, elapsed)
	usage := resp.Usage
	if usage.TotalTokens > 0 {
		tokens := metrics.EmbeddingTokensTotal
		tokens.WithLabelValues(e.provider, string(e.model), "prompt").Add(float64(usage.PromptTokens))
		tokens.WithLabelValues(e.provider, string(e.model), "total").Add(float64(usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
	}, nil
}

// record counts one call; calls that never reached the network carry no latency.
func (e *Embedder) record(status string, elapsed time.Duration) {
	model := string(e.model)
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, status).Inc()
	if elapsed > 0 {
		metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(elapsed.Seconds())
	}
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if e.apiKey == "" {
		return fmt.Errorf("%w: api key is not set: %w", domain.ErrEmbeddingUnavailable, domain.ErrConfiguration)
	}
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", parseAPIError(err))
	}
	return nil
}

// parseAPIError maps a go-openai failure onto the domain taxonomy.
// Every error wraps ErrEmbeddingProviderError; throttling, 5xx and transport
// failures also wrap ErrCollaboratorUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		if retryable(reqErr.HTTPStatusCode) {
			return fmt.Errorf("embedding API error %d: %s: %w: %w",
				reqErr.HTTPStatusCode, detail, wrap, domain.ErrCollaboratorUnavailable)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if retryable(apiErr.HTTPStatusCode) {
			return fmt.Errorf("embedding API error %d: %s: %w: %w",
				apiErr.HTTPStatusCode, apiErr.Message, wrap, domain.ErrCollaboratorUnavailable)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	// Network failure or context expiry; keep the cause so deadlines stay detectable.
	return fmt.Errorf("embedding request failed: %w: %w: %w", wrap, domain.ErrCollaboratorUnavailable, err)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
