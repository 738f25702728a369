// Package chi is the HTTP transport: routing, query parsing, DTO mapping
// and domain-error-to-status translation.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/domain/search/request"
	healthuc "github.com/kailas-cloud/shoprank/internal/usecase/health"
	rankinguc "github.com/kailas-cloud/shoprank/internal/usecase/ranking"
	"github.com/kailas-cloud/shoprank/internal/usecase/recommend"
)

// Recommendation endpoint bounds.
const (
	defaultSimilarCount       = 10
	maxSimilarCount           = 50
	defaultComplementaryCount = 5
	maxComplementaryCount     = 20
)

// SearchService runs the ranking pipeline.
type SearchService interface {
	Search(ctx context.Context, req request.Request) (rankinguc.Response, error)
}

// RecommendService serves similar and complementary lookups.
type RecommendService interface {
	Similar(ctx context.Context, productID string, count int) ([]recommend.Recommendation, error)
	Complementary(ctx context.Context, productID string, count int) ([]recommend.Recommendation, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// CatalogReader exposes catalog lookups for the product and metadata endpoints.
type CatalogReader interface {
	Get(id string) (domain.Product, bool)
	Categories() []string
	Count() int
	Dimension() int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Limits are the configured result-count bounds for /search.
type Limits struct {
	Default int
	Max     int
}

// Server exposes the ranking API over HTTP.
type Server struct {
	search        SearchService
	recommend     RecommendService
	catalog       CatalogReader
	health        HealthService
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. Zero limits fall back to the
// request-level defaults.
func NewServer(
	search SearchService,
	rec RecommendService,
	cat CatalogReader,
	health HealthService,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if limits.Default <= 0 {
		limits.Default = request.DefaultLimit
	}
	if limits.Max <= 0 {
		limits.Max = request.MaxLimit
	}
	s := &Server{
		search:    search,
		recommend: rec,
		catalog:   cat,
		health:    health,
		limits:    limits,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmptyQueryText, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Routes mounts all API endpoints on a fresh chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/search", s.Search)
	r.Get("/similar/{productID}", s.Similar)
	r.Get("/complementary/{productID}", s.Complementary)
	r.Get("/product/{productID}", s.Product)
	r.Get("/categories", s.Categories)
	r.Get("/stats", s.Stats)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	budget, err := optionalFloat(q.Get("budget"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "budget must be a number")
		return
	}
	limit, err := parseLimit(q.Get("limit"), s.limits.Max)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if limit == 0 {
		limit = s.limits.Default
	}
	var category *string
	if c := q.Get("category"); c != "" {
		category = &c
	}

	req, err := request.New(q.Get("query"), budget, category, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results := make([]RankedProduct, len(resp.Results))
	for i := range resp.Results {
		results[i] = rankedProductFromResult(&resp.Results[i])
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:          req.Query(),
		TotalResults:   len(results),
		RetrievedCount: resp.RetrievedCount,
		PoolSize:       resp.PoolSize,
		LatencyMs:      float64(time.Since(start).Microseconds()) / 1000,
		Results:        results,
	})
}

// Similar handles GET /similar/{productID}.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	s.recommendations(w, r, defaultSimilarCount, maxSimilarCount, s.recommend.Similar)
}

// Complementary handles GET /complementary/{productID}.
func (s *Server) Complementary(w http.ResponseWriter, r *http.Request) {
	s.recommendations(w, r, defaultComplementaryCount, maxComplementaryCount, s.recommend.Complementary)
}

func (s *Server) recommendations(
	w http.ResponseWriter,
	r *http.Request,
	defaultCount, maxCount int,
	lookup func(ctx context.Context, productID string, count int) ([]recommend.Recommendation, error),
) {
	productID := chi.URLParam(r, "productID")

	count, err := parseLimit(r.URL.Query().Get("limit"), maxCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if count == 0 {
		count = defaultCount
	}

	recs, err := lookup(r.Context(), productID, count)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RecommendedProduct, len(recs))
	for i, rec := range recs {
		items[i] = recommendedFromRec(rec)
	}
	writeJSON(w, http.StatusOK, RecommendationsResponse{ProductID: productID, Items: items})
}

// Product handles GET /product/{productID}.
func (s *Server) Product(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	p, ok := s.catalog.Get(productID)
	if !ok {
		writeError(w, http.StatusNotFound, codeProductNotFound,
			fmt.Sprintf("product %q not found", productID))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Categories handles GET /categories.
func (s *Server) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: s.catalog.Categories()})
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalProducts:      s.catalog.Count(),
		IndexSize:          s.catalog.Count(),
		EmbeddingDimension: s.catalog.Dimension(),
		Categories:         len(s.catalog.Categories()),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// parseLimit parses an optional positive limit. Empty means "use default"
// (returned as zero); anything non-positive or above maxLimit is rejected.
func parseLimit(raw string, maxLimit int) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("limit must be an integer")
	}
	if n <= 0 || n > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return n, nil
}

func optionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func safeDomainMessage(err error) string {
	// Validation failures carry the descriptive reason back to the caller.
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrEmptyQueryText) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrRetrievalFailed,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
