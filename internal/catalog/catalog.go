// Package catalog holds the immutable in-memory product table.
// Built once at process start, read-only for the process lifetime.
package catalog

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/shoprank/internal/domain"
)

// Stats are catalog-wide bounds precomputed at load time for feature
// normalization.
type Stats struct {
	MinPrice      float64
	MaxPrice      float64
	MinLogReviews float64
	MaxLogReviews float64
}

// Store is the immutable product table, aligned 1:1 with the vector index.
type Store struct {
	products   []domain.Product
	byID       map[string]int
	categories []string
	stats      Stats
	dim        int
}

// New validates products and builds the store. dim is the embedding
// dimension the aligned index was built with.
func New(products []domain.Product, dim int) (*Store, error) {
	if len(products) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be > 0, got %d", dim)
	}

	byID := make(map[string]int, len(products))
	catSet := make(map[string]struct{})
	stats := Stats{
		MinPrice:      math.Inf(1),
		MinLogReviews: math.Inf(1),
	}

	for i := range products {
		p := &products[i]
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog record: %w", err)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		byID[p.ID] = i
		catSet[p.Category] = struct{}{}

		stats.MinPrice = math.Min(stats.MinPrice, p.Price)
		stats.MaxPrice = math.Max(stats.MaxPrice, p.Price)
		logReviews := math.Log1p(float64(p.ReviewCount))
		stats.MinLogReviews = math.Min(stats.MinLogReviews, logReviews)
		stats.MaxLogReviews = math.Max(stats.MaxLogReviews, logReviews)
	}

	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return &Store{
		products:   products,
		byID:       byID,
		categories: categories,
		stats:      stats,
		dim:        dim,
	}, nil
}

// Get returns a product by id.
func (s *Store) Get(id string) (domain.Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[i], true
}

// Products returns the full product table. Callers must treat it as read-only.
func (s *Store) Products() []domain.Product { return s.products }

// Categories returns the sorted set of known categories.
func (s *Store) Categories() []string { return s.categories }

// HasCategory reports whether the category exists in the catalog.
func (s *Store) HasCategory(category string) bool {
	i := sort.SearchStrings(s.categories, category)
	return i < len(s.categories) && s.categories[i] == category
}

// Count returns the total number of products.
func (s *Store) Count() int { return len(s.products) }

// Stats returns the precomputed normalization bounds.
func (s *Store) Stats() Stats { return s.stats }

// Dimension returns the embedding dimension.
func (s *Store) Dimension() int { return s.dim }
