package ranking

import (
	"context"

	"github.com/kailas-cloud/shoprank/internal/catalog"
	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/domain/search/result"
	"github.com/kailas-cloud/shoprank/internal/index"
)

// Searcher is the consumer interface for the vector index (ISP).
type Searcher interface {
	Search(vec []float32, n int) ([]index.Hit, error)
}

// Catalog is the consumer interface for product lookup and global stats.
type Catalog interface {
	Get(id string) (domain.Product, bool)
	Count() int
	Stats() catalog.Stats
}

// Explainer attaches highlights and text to a ranked result.
type Explainer interface {
	Explain(ctx context.Context, query string, r *result.Result) result.Explanation
}
