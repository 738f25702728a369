package chi

import (
	"github.com/kailas-cloud/shoprank/internal/domain/search/result"
	"github.com/kailas-cloud/shoprank/internal/usecase/health"
	"github.com/kailas-cloud/shoprank/internal/usecase/recommend"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeProductNotFound   = "product_not_found"
	codeRetrievalFailed   = "retrieval_failed"
	codeEmbeddingProvider = "embedding_provider_error"
	codeInternalError     = "internal_error"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScoreBreakdown mirrors the four blended sub-scores.
type ScoreBreakdown struct {
	Semantic   float64 `json:"semantic"`
	Price      float64 `json:"price"`
	Popularity float64 `json:"popularity"`
	Rating     float64 `json:"rating"`
}

// Explanation is the per-result justification.
type Explanation struct {
	Text       string   `json:"text"`
	Highlights []string `json:"highlights"`
	Generated  bool     `json:"generated"`
}

// RankedProduct is one search result.
type RankedProduct struct {
	Rank           int            `json:"rank"`
	ProductID      string         `json:"product_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Category       string         `json:"category"`
	Brand          string         `json:"brand"`
	Price          float64        `json:"price"`
	Rating         float64        `json:"rating"`
	ReviewCount    int            `json:"review_count"`
	ImageURL       string         `json:"image_url,omitempty"`
	FinalScore     float64        `json:"final_score"`
	ScoreBreakdown ScoreBreakdown `json:"score_breakdown"`
	Explanation    Explanation    `json:"explanation"`
}

// SearchResponse is the /search body.
type SearchResponse struct {
	Query          string          `json:"query"`
	TotalResults   int             `json:"total_results"`
	RetrievedCount int             `json:"retrieved_count"`
	PoolSize       int             `json:"candidate_pool_size"`
	LatencyMs      float64         `json:"latency_ms"`
	Results        []RankedProduct `json:"results"`
}

// RecommendedProduct is one /similar or /complementary entry.
type RecommendedProduct struct {
	ProductID  string  `json:"product_id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	Rating     float64 `json:"rating"`
	ImageURL   string  `json:"image_url,omitempty"`
	Similarity float64 `json:"similarity_score"`
	Reason     string  `json:"reason"`
}

// RecommendationsResponse is the /similar and /complementary body.
type RecommendationsResponse struct {
	ProductID string               `json:"product_id"`
	Items     []RecommendedProduct `json:"items"`
}

// CategoriesResponse is the /categories body.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// StatsResponse is the /stats body.
type StatsResponse struct {
	TotalProducts      int `json:"total_products"`
	IndexSize          int `json:"index_size"`
	EmbeddingDimension int `json:"embedding_dimension"`
	Categories         int `json:"categories"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	ProductCount  int               `json:"product_count,omitempty"`
	EmbeddingDims int               `json:"embedding_dimension,omitempty"`
}

func rankedProductFromResult(r *result.Result) RankedProduct {
	p := r.Product()
	sc := r.Scores()
	e := r.Explanation()
	highlights := e.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	return RankedProduct{
		Rank:        r.Rank(),
		ProductID:   p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		ImageURL:    p.ImageURL,
		FinalScore:  r.FinalScore(),
		ScoreBreakdown: ScoreBreakdown{
			Semantic:   sc.Semantic,
			Price:      sc.Price,
			Popularity: sc.Popularity,
			Rating:     sc.Rating,
		},
		Explanation: Explanation{
			Text:       e.Text,
			Highlights: highlights,
			Generated:  e.Generated,
		},
	}
}

func recommendedFromRec(rec recommend.Recommendation) RecommendedProduct {
	return RecommendedProduct{
		ProductID:  rec.Product.ID,
		Title:      rec.Product.Title,
		Category:   rec.Product.Category,
		Price:      rec.Product.Price,
		Rating:     rec.Product.Rating,
		ImageURL:   rec.Product.ImageURL,
		Similarity: rec.Similarity,
		Reason:     rec.Reason,
	}
}

func healthResponse(r health.Report) HealthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return HealthResponse{
		Status:        string(r.Status),
		Checks:        checks,
		ProductCount:  r.ProductCount,
		EmbeddingDims: r.EmbeddingDims,
	}
}
