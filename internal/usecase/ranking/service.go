// Package ranking implements the search pipeline: embed the query,
// retrieve a candidate pool from the vector index, apply hard filters,
// enrich candidates with behavioral sub-scores, blend, sort and rank.
package ranking

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/domain"
	domranking "github.com/kailas-cloud/shoprank/internal/domain/ranking"
	"github.com/kailas-cloud/shoprank/internal/domain/search/request"
	"github.com/kailas-cloud/shoprank/internal/domain/search/result"
	"github.com/kailas-cloud/shoprank/internal/index"
	"github.com/kailas-cloud/shoprank/internal/logger"
)

// Config holds the pipeline tuning knobs.
type Config struct {
	// PoolSize is how many nearest neighbors to pull before filtering.
	PoolSize int
	// WidenFactor multiplies the pool size for the single retry taken
	// when hard filters starve the pool below the requested limit.
	WidenFactor int
	Weights     domranking.Weights
}

// Service runs the four-stage search pipeline.
type Service struct {
	embedder  domain.Embedder
	searcher  Searcher
	catalog   Catalog
	explainer Explainer
	cfg       Config
	logger    *zap.Logger
}

func New(
	embedder domain.Embedder,
	searcher Searcher,
	cat Catalog,
	explainer Explainer,
	cfg Config,
	log *zap.Logger,
) *Service {
	return &Service{
		embedder:  embedder,
		searcher:  searcher,
		catalog:   cat,
		explainer: explainer,
		cfg:       cfg,
		logger:    log,
	}
}

// Response carries the ranked results plus pipeline diagnostics.
type Response struct {
	Results []result.Result
	// RetrievedCount is how many hits the index returned before filtering.
	RetrievedCount int
	// PoolSize is the effective pool after any widening.
	PoolSize int
	Intent   PriceIntent
}

// Search executes the full pipeline for one validated request.
func (s *Service) Search(ctx context.Context, req request.Request) (Response, error) {
	emb, err := s.embedder.Embed(ctx, req.Query())
	if err != nil {
		return Response{}, fmt.Errorf("embed query: %w", err)
	}

	pool := min(s.cfg.PoolSize, s.catalog.Count())

	hits, err := s.searcher.Search(emb.Embedding, pool)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}
	cands := s.filter(hits, &req)

	// Hard filters can starve the pool. Widen once, bounded by the
	// catalog size, instead of paging the index repeatedly.
	if len(cands) < req.Limit() && pool < s.catalog.Count() {
		pool = min(pool*s.cfg.WidenFactor, s.catalog.Count())
		hits, err = s.searcher.Search(emb.Embedding, pool)
		if err != nil {
			return Response{}, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
		}
		cands = s.filter(hits, &req)
	}

	intent := inferPriceIntent(req.Query())
	enrich(cands, s.catalog.Stats(), s.cfg.Weights, intent)
	sortCandidates(cands)

	if len(cands) > req.Limit() {
		cands = cands[:req.Limit()]
	}

	results := make([]result.Result, len(cands))
	for i := range cands {
		c := &cands[i]
		r := result.New(c.product, c.similarity, c.scores, c.finalScore)
		r.SetRank(i + 1)
		r.SetExplanation(s.explainer.Explain(ctx, req.Query(), &r))
		results[i] = r
	}

	logger.FromContext(ctx).Debug("search pipeline complete",
		zap.Int("retrieved", len(hits)),
		zap.Int("pool", pool),
		zap.Int("results", len(results)),
		zap.Stringer("price_intent", intent),
	)

	return Response{
		Results:        results,
		RetrievedCount: len(hits),
		PoolSize:       pool,
		Intent:         intent,
	}, nil
}

// filter keeps only the hits whose product passes the hard filters.
func (s *Service) filter(hits []index.Hit, req *request.Request) []candidate {
	cands := make([]candidate, 0, len(hits))
	for _, h := range hits {
		p, ok := s.catalog.Get(h.ID)
		if !ok {
			// Index and catalog are built from the same load, so a
			// miss here means a programming error, not bad input.
			s.logger.Warn("index hit missing from catalog", zap.String("product_id", h.ID))
			continue
		}
		if !req.Matches(&p) {
			continue
		}
		cands = append(cands, candidate{product: p, similarity: h.Similarity})
	}
	return cands
}

// sortCandidates orders by blended score, breaking ties by review count
// and then product ID so equal inputs always rank identically.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := &cands[i], &cands[j]
		if a.finalScore != b.finalScore {
			return a.finalScore > b.finalScore
		}
		if a.product.ReviewCount != b.product.ReviewCount {
			return a.product.ReviewCount > b.product.ReviewCount
		}
		return a.product.ID < b.product.ID
	})
}
