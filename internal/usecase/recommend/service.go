// Package recommend serves similar-item and complementary-item lookups
// over the same vector index the search pipeline uses.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/index"
)

// Index is the consumer interface for the vector index (ISP).
type Index interface {
	Search(vec []float32, n int) ([]index.Hit, error)
	Vector(id string) ([]float32, bool)
}

// Catalog is the consumer interface for product lookup.
type Catalog interface {
	Get(id string) (domain.Product, bool)
	Products() []domain.Product
}

// Recommendation is one recommended product with the similarity that
// produced it and a short human-readable reason.
type Recommendation struct {
	Product    domain.Product
	Similarity float64
	Reason     string
}

// Service answers similar and complementary lookups.
type Service struct {
	index     Index
	catalog   Catalog
	adjacency map[string][]string
	logger    *zap.Logger
}

// New creates the recommendation service. A nil adjacency map falls back
// to DefaultAdjacency.
func New(ix Index, cat Catalog, adjacency map[string][]string, log *zap.Logger) *Service {
	if adjacency == nil {
		adjacency = DefaultAdjacency()
	}
	return &Service{index: ix, catalog: cat, adjacency: adjacency, logger: log}
}

// DefaultAdjacency maps each catalog category to the categories shoppers
// commonly buy alongside it.
func DefaultAdjacency() map[string][]string {
	return map[string][]string{
		"Electronics":            {"Home & Kitchen", "Toys & Games"},
		"Clothing":               {"Sports & Outdoors", "Beauty & Personal Care"},
		"Home & Kitchen":         {"Electronics", "Books & Media"},
		"Sports & Outdoors":      {"Clothing", "Electronics"},
		"Beauty & Personal Care": {"Clothing", "Home & Kitchen"},
		"Books & Media":          {"Toys & Games", "Home & Kitchen"},
		"Toys & Games":           {"Books & Media", "Electronics"},
	}
}

// Similar returns the count nearest neighbors of a product, excluding the
// product itself.
func (s *Service) Similar(ctx context.Context, productID string, count int) ([]Recommendation, error) {
	source, ok := s.catalog.Get(productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, domain.ErrProductNotFound)
	}
	vec, ok := s.index.Vector(productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, domain.ErrProductNotFound)
	}

	// The product is its own nearest neighbor, so over-fetch by one.
	hits, err := s.index.Search(vec, count+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}

	recs := make([]Recommendation, 0, count)
	for _, h := range hits {
		if h.ID == productID {
			continue
		}
		p, ok := s.catalog.Get(h.ID)
		if !ok {
			s.logger.Warn("index hit missing from catalog", zap.String("product_id", h.ID))
			continue
		}
		recs = append(recs, Recommendation{
			Product:    p,
			Similarity: h.Similarity,
			Reason:     similarReason(&source, &p),
		})
		if len(recs) == count {
			break
		}
	}
	return recs, nil
}

// Complementary returns products from categories adjacent to the source
// product's category, ranked by similarity to the source embedding. A
// category with no adjacency entry yields an empty list.
func (s *Service) Complementary(ctx context.Context, productID string, count int) ([]Recommendation, error) {
	source, ok := s.catalog.Get(productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, domain.ErrProductNotFound)
	}
	vec, ok := s.index.Vector(productID)
	if !ok {
		return nil, fmt.Errorf("product %q: %w", productID, domain.ErrProductNotFound)
	}

	adjacent := s.adjacency[source.Category]
	if len(adjacent) == 0 {
		return []Recommendation{}, nil
	}
	adjSet := make(map[string]struct{}, len(adjacent))
	for _, c := range adjacent {
		adjSet[c] = struct{}{}
	}

	// The adjacency set usually excludes most of the catalog, so a scan
	// with per-product dot products beats paging the full index.
	recs := make([]Recommendation, 0, count)
	for _, p := range s.catalog.Products() {
		if p.ID == productID {
			continue
		}
		if _, ok := adjSet[p.Category]; !ok {
			continue
		}
		pv, ok := s.index.Vector(p.ID)
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			Product:    p,
			Similarity: dot(vec, pv),
			Reason:     fmt.Sprintf("Pairs well with %s", truncate(source.Title, 30)),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Similarity != recs[j].Similarity {
			return recs[i].Similarity > recs[j].Similarity
		}
		return recs[i].Product.ID < recs[j].Product.ID
	})
	if len(recs) > count {
		recs = recs[:count]
	}
	return recs, nil
}

func similarReason(source, rec *domain.Product) string {
	if source.Category == rec.Category {
		return fmt.Sprintf("Also in %s", rec.Category)
	}
	return "Similar product based on your interest"
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// truncate shortens s to at most n runes. Slicing on runes keeps a
// multibyte title from being cut mid-sequence.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
