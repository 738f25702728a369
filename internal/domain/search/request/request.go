package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/shoprank/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 512
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Request is a validated product search query. Optional filters use
// explicit pointers: nil means "not set", never a sentinel value.
type Request struct {
	query    string
	budget   *float64
	category *string
	limit    int
}

// New validates and normalizes search parameters.
// Defaults: limit=20, clamped to MaxLimit. The query is trimmed before
// the emptiness check so whitespace-only input is rejected here, before
// any retrieval work.
func New(query string, budget *float64, category *string, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if budget != nil && *budget < 0 {
		return Request{}, fmt.Errorf("%w: budget must be >= 0, got %v", domain.ErrInvalidRequest, *budget)
	}
	if category != nil && strings.TrimSpace(*category) == "" {
		return Request{}, fmt.Errorf("%w: category filter must not be blank", domain.ErrInvalidRequest)
	}
	if limit < 0 {
		return Request{}, fmt.Errorf("%w: limit must be >= 0, got %d", domain.ErrInvalidRequest, limit)
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Request{
		query:    query,
		budget:   budget,
		category: category,
		limit:    limit,
	}, nil
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Budget returns the maximum price filter (nil when absent).
func (r *Request) Budget() *float64 { return r.budget }

// Category returns the category filter (nil when absent).
func (r *Request) Category() *string { return r.category }

// Limit returns the requested result count.
func (r *Request) Limit() int { return r.limit }

// Matches reports whether a product passes the hard filters.
func (r *Request) Matches(p *domain.Product) bool {
	if r.category != nil && p.Category != *r.category {
		return false
	}
	if r.budget != nil && p.Price > *r.budget {
		return false
	}
	return true
}
