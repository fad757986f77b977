package hybridex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	username string
	password string

	// keyPrefix namespaces every key the client writes. Empty uses "hybridex:".
	keyPrefix string

	embedder Embedder
	openai   *OpenAIConfig
	reranker Reranker
	voyage   *VoyageConfig

	vectorWeight     float64
	textWeight       float64
	rerankBreadth    int
	candidatePool    int
	timeout          time.Duration
	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	batchWorkers     int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// OpenAIConfig configures the built-in OpenAI-compatible embedding provider.
type OpenAIConfig struct {
	APIKey string
	// BaseURL points at an OpenAI-compatible endpoint. Empty uses api.openai.com.
	BaseURL string
	// Model defaults to text-embedding-3-small.
	Model string
	// CacheSize is the in-process embedding cache capacity. Zero uses the default, negative disables it.
	CacheSize int
}

// VoyageConfig configures the built-in Voyage AI reranker.
type VoyageConfig struct {
	APIKey  string
	BaseURL string
	// Model defaults to rerank-2.
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis Stack or Redis 8 instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithUsername sets the ACL username used for the database connection.
func WithUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
	})
}

// WithKeyPrefix sets the prefix of every key and index the client creates, so
// several deployments can share one database. Default: "hybridex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets a custom text embedding provider. It takes precedence over WithOpenAI.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI enables the built-in OpenAI-compatible embedding provider.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
	})
}

// WithReranker sets a custom reranker. It takes precedence over WithVoyage.
func WithReranker(r Reranker) Option {
	return optionFunc(func(c *clientConfig) {
		c.reranker = r
	})
}

// WithVoyage enables the built-in Voyage AI reranker.
func WithVoyage(cfg VoyageConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.voyage = &cfg
	})
}

// WithWeights sets the default fusion weights of vector and lexical scores.
// Defaults: 0.7 vector, 0.3 text.
func WithWeights(vector, text float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorWeight = vector
		c.textWeight = text
	})
}

// WithRerankBreadth sets how many fused candidates are sent to the reranker.
// Default: 50.
func WithRerankBreadth(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rerankBreadth = n
	})
}

// WithCandidatePool sets the minimum number of hits fetched from each signal.
// Default: 100.
func WithCandidatePool(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidatePool = n
	})
}

// WithCollaboratorTimeout bounds every embedding, storage and rerank call of a search.
// Default: 10s.
func WithCollaboratorTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithVectorDimensions sets the embedding dimensionality of every namespace index.
// Defaults to 1536 (text-embedding-3-small).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=32, EFConstruct=400.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithBatchWorkers sets the size of the worker pool used by AddBatch.
// Default: number of CPUs.
func WithBatchWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchWorkers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
