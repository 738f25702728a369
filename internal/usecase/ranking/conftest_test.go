package ranking

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/catalog"
	"github.com/kailas-cloud/shoprank/internal/domain"
	domranking "github.com/kailas-cloud/shoprank/internal/domain/ranking"
	"github.com/kailas-cloud/shoprank/internal/domain/search/result"
	"github.com/kailas-cloud/shoprank/internal/index"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{
			ID: "p1", Title: "Sony WH-1000XM5 Wireless Headphones",
			Description: "Noise canceling over-ear headphones",
			Category:    "Electronics", Brand: "Sony",
			Price: 99.99, Rating: 4.5, ReviewCount: 1200,
		},
		{
			ID: "p2", Title: "Nike Air Zoom Pegasus",
			Description: "Road running shoes",
			Category:    "Sports & Outdoors", Brand: "Nike",
			Price: 79.99, Rating: 4.2, ReviewCount: 340,
		},
		{
			ID: "p3", Title: "Lodge Cast Iron Skillet",
			Description: "Pre-seasoned 10.25 inch skillet",
			Category:    "Home & Kitchen", Brand: "Lodge",
			Price: 29.99, Rating: 4.8, ReviewCount: 15,
		},
		{
			ID: "p4", Title: "Anker USB-C Charger",
			Description: "Compact fast charger",
			Category:    "Electronics", Brand: "Anker",
			Price: 19.99, Rating: 4.0, ReviewCount: 5000,
		},
		{
			ID: "p5", Title: "Bose QuietComfort Ultra",
			Description: "Premium noise canceling headphones",
			Category:    "Electronics", Brand: "Bose",
			Price: 299.99, Rating: 4.7, ReviewCount: 800,
		},
	}
}

func testCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.New(testProducts(), 2)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return store
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vec}, nil
}

// scriptedSearcher returns the first len(hits) <= n entries of a fixed
// hit list and records each requested pool size.
type scriptedSearcher struct {
	hits  []index.Hit
	err   error
	pools []int
}

func (s *scriptedSearcher) Search(_ []float32, n int) ([]index.Hit, error) {
	s.pools = append(s.pools, n)
	if s.err != nil {
		return nil, s.err
	}
	if n > len(s.hits) {
		n = len(s.hits)
	}
	return s.hits[:n], nil
}

type noopExplainer struct {
	calls int
}

func (e *noopExplainer) Explain(_ context.Context, _ string, _ *result.Result) result.Explanation {
	e.calls++
	return result.Explanation{}
}

func testService(t *testing.T, searcher Searcher, cfg Config) (*Service, *noopExplainer) {
	t.Helper()
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 100
	}
	if cfg.WidenFactor == 0 {
		cfg.WidenFactor = 5
	}
	if cfg.Weights == (domranking.Weights{}) {
		cfg.Weights = domranking.DefaultWeights()
	}
	explainer := &noopExplainer{}
	svc := New(
		&stubEmbedder{vec: []float32{1, 0}},
		searcher,
		testCatalog(t),
		explainer,
		cfg,
		zap.NewNop(),
	)
	return svc, explainer
}
