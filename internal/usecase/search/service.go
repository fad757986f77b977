package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/hybridex/internal/domain"
	"github.com/kailas-cloud/hybridex/internal/domain/namespace"
	"github.com/kailas-cloud/hybridex/internal/domain/search/candidate"
	"github.com/kailas-cloud/hybridex/internal/domain/search/mode"
	"github.com/kailas-cloud/hybridex/internal/domain/search/request"
	"github.com/kailas-cloud/hybridex/internal/domain/search/weights"
	"github.com/kailas-cloud/hybridex/internal/metrics"
)

// Config holds orchestrator defaults.
type Config struct {
	// Weights applies when the request carries none.
	Weights weights.Weights
	// RerankBreadth applies when the request carries none.
	RerankBreadth int
	// CandidatePool is the minimum number of hits fetched from each retrieval signal.
	CandidatePool int
	// Timeout bounds every individual collaborator call. Zero disables it.
	Timeout time.Duration
}

// DefaultConfig returns 0.7/0.3 weights, breadth 50, pool 100 and a 10s call timeout.
func DefaultConfig() Config {
	return Config{
		Weights:       weights.Default(),
		RerankBreadth: request.DefaultRerankBreadth,
		CandidatePool: 100,
		Timeout:       10 * time.Second,
	}
}

// Service runs vector-only, hybrid and hybrid+rerank searches.
type Service struct {
	repo     Repository
	embed    Embedder
	reranker Reranker
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service. reranker may be nil; HybridRerank then fails fast.
func New(repo Repository, embed Embedder, reranker Reranker, cfg Config, logger *zap.Logger) *Service {
	def := DefaultConfig()
	if cfg.Weights.IsZero() {
		cfg.Weights = def.Weights
	}
	if cfg.RerankBreadth <= 0 {
		cfg.RerankBreadth = def.RerankBreadth
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = def.CandidatePool
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, reranker: reranker, cfg: cfg, logger: logger}
}

// Search executes one request and returns at most req.Limit() ranked candidates.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]candidate.Candidate, error) {
	start := time.Now()
	results, err := s.search(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
		if stage, ok := domain.FailedStage(err); ok {
			metrics.SearchStageErrorsTotal.WithLabelValues(string(req.Mode()), string(stage)).Inc()
		}
		s.logger.Warn("Search failed",
			zap.String("namespace", req.Namespace().String()),
			zap.String("mode", string(req.Mode())),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	} else {
		s.logger.Debug("Search completed",
			zap.String("namespace", req.Namespace().String()),
			zap.String("mode", string(req.Mode())),
			zap.Int("results", len(results)),
			zap.Duration("duration", time.Since(start)),
		)
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(req.Mode()), status).Inc()

	return results, err
}

func (s *Service) search(ctx context.Context, req *request.Request) ([]candidate.Candidate, error) {
	switch req.Mode() {
	case mode.VectorOnly:
		return s.searchVector(ctx, req)
	case mode.Hybrid:
		return s.searchHybrid(ctx, req, req.Limit())
	case mode.HybridRerank:
		return s.searchRerank(ctx, req)
	default:
		return nil, fmt.Errorf("unsupported search mode %q: %w", req.Mode(), domain.ErrInvalidRequest)
	}
}

// searchVector embeds the query and ranks by raw cosine similarity.
func (s *Service) searchVector(ctx context.Context, req *request.Request) ([]candidate.Candidate, error) {
	vec, err := s.embedQuery(ctx, req.Mode(), req.Query())
	if err != nil {
		return nil, err
	}
	return s.knn(ctx, req.Mode(), req.Namespace(), vec, req.Limit())
}

// searchHybrid runs BM25 concurrently with embed→KNN, unions the hits and fuses them.
func (s *Service) searchHybrid(
	ctx context.Context, req *request.Request, limit int,
) ([]candidate.Candidate, error) {
	if !s.repo.SupportsTextSearch(ctx) {
		return nil, domain.NewStageError(domain.StageLexical, domain.ErrKeywordSearchNotSupported)
	}

	pool := max(limit, s.cfg.CandidatePool)
	ns := req.Namespace()

	var (
		queryVec []float32
		knnHits  []candidate.Candidate
		lexHits  []candidate.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lexHits, err = s.bm25(gctx, req.Mode(), ns, req.Query(), pool)
		return err
	})
	g.Go(func() error {
		vec, err := s.embedQuery(gctx, req.Mode(), req.Query())
		if err != nil {
			return err
		}
		queryVec = vec
		knnHits, err = s.knn(gctx, req.Mode(), ns, vec, pool)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already a StageError
	}

	union := unionHits(knnHits, lexHits, queryVec)
	metrics.SearchCandidates.WithLabelValues(string(domain.StageFusion)).Observe(float64(len(union)))
	if len(union) == 0 {
		return nil, nil
	}

	start := time.Now()
	fused := Fuse(union, req.Weights().Or(s.cfg.Weights))
	s.observeStage(req.Mode(), domain.StageFusion, start)

	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// searchRerank runs hybrid retrieval at rerank breadth and reorders the result with the reranker.
func (s *Service) searchRerank(ctx context.Context, req *request.Request) ([]candidate.Candidate, error) {
	if s.reranker == nil {
		return nil, domain.NewStageError(domain.StageRerank,
			fmt.Errorf("no reranker configured: %w: %w", domain.ErrRerankUnavailable, domain.ErrConfiguration))
	}

	breadth := req.RerankBreadth()
	if breadth == 0 {
		breadth = s.cfg.RerankBreadth
	}
	if req.Limit() > breadth {
		return nil, fmt.Errorf("limit %d exceeds rerank breadth %d: %w", req.Limit(), breadth, domain.ErrInvalidRequest)
	}

	cands, err := s.searchHybrid(ctx, req, breadth)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, nil
	}

	docs := make([]string, len(cands))
	for i, c := range cands {
		docs[i] = c.Content()
	}
	metrics.SearchCandidates.WithLabelValues(string(domain.StageRerank)).Observe(float64(len(cands)))

	start := time.Now()
	callCtx, cancel := s.callContext(ctx)
	hits, err := s.reranker.Rerank(callCtx, req.Query(), docs)
	cancel()
	s.observeStage(req.Mode(), domain.StageRerank, start)
	if err != nil {
		return nil, domain.NewStageError(domain.StageRerank, collaboratorErr(err))
	}

	merged, err := Merge(cands, hits, req.Limit())
	if err != nil {
		return nil, domain.NewStageError(domain.StageRerank, err)
	}
	return merged, nil
}

func (s *Service) embedQuery(ctx context.Context, m mode.Mode, query string) ([]float32, error) {
	start := time.Now()
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	res, err := s.embed.Embed(callCtx, query)
	s.observeStage(m, domain.StageEmbed, start)
	if err != nil {
		return nil, domain.NewStageError(domain.StageEmbed, collaboratorErr(err))
	}
	if len(res.Embedding) == 0 {
		return nil, domain.NewStageError(domain.StageEmbed,
			fmt.Errorf("empty query embedding: %w", domain.ErrMalformedResponse))
	}
	return res.Embedding, nil
}

func (s *Service) knn(
	ctx context.Context, m mode.Mode, ns namespace.Namespace, vec []float32, k int,
) ([]candidate.Candidate, error) {
	start := time.Now()
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	hits, err := s.repo.SearchKNN(callCtx, ns, vec, k)
	s.observeStage(m, domain.StageVector, start)
	if err != nil {
		return nil, domain.NewStageError(domain.StageVector, collaboratorErr(err))
	}
	return hits, nil
}

func (s *Service) bm25(
	ctx context.Context, m mode.Mode, ns namespace.Namespace, query string, k int,
) ([]candidate.Candidate, error) {
	start := time.Now()
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	hits, err := s.repo.SearchBM25(callCtx, ns, query, k)
	s.observeStage(m, domain.StageLexical, start)
	if err != nil {
		return nil, domain.NewStageError(domain.StageLexical, collaboratorErr(err))
	}
	return hits, nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

func (s *Service) observeStage(m mode.Mode, stage domain.Stage, start time.Time) {
	metrics.SearchStageDuration.WithLabelValues(string(m), string(stage)).Observe(time.Since(start).Seconds())
}

// collaboratorErr tags deadline expiry as a timeout.
func collaboratorErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrTimeout) {
		return fmt.Errorf("%w: %w: %w", domain.ErrTimeout, domain.ErrCollaboratorUnavailable, err)
	}
	return err
}

// unionHits merges KNN and BM25 hits by document ID, KNN order first.
// A BM25-only hit gets its cosine similarity computed from its stored vector;
// a KNN-only hit gets a lexical score of 0.
func unionHits(knn, lex []candidate.Candidate, queryVec []float32) []candidate.Candidate {
	out := make([]candidate.Candidate, 0, len(knn)+len(lex))
	pos := make(map[string]int, len(knn)+len(lex))

	for _, c := range knn {
		if _, dup := pos[c.ID()]; dup {
			continue
		}
		pos[c.ID()] = len(out)
		out = append(out, c.WithLexical(0))
	}

	for _, c := range lex {
		score, _ := c.Lexical()
		if i, ok := pos[c.ID()]; ok {
			out[i] = out[i].WithLexical(score)
			continue
		}
		pos[c.ID()] = len(out)
		out = append(out, c.WithCosine(cosineSimilarity(queryVec, c.Vector())))
	}

	return out
}

// cosineSimilarity returns max(0, cos(a, b)); 0 for mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return max(0, dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
