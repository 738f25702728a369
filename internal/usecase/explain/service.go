// Package explain turns sub-scores into human-readable justifications.
// Highlight tags are derived deterministically and never fail; the
// natural-language sentence is best-effort and falls back to a template
// without ever touching scores or ranks.
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/domain/ranking"
	"github.com/kailas-cloud/shoprank/internal/domain/search/result"
	"github.com/kailas-cloud/shoprank/internal/logger"
	"github.com/kailas-cloud/shoprank/internal/metrics"
)

// Highlight tags.
const (
	TagBestMatch     = "best match"
	TagTopRated      = "top rated"
	TagBestValue     = "best value"
	TagPopularChoice = "popular choice"
)

// Thresholds are the sub-score cutoffs above which a highlight applies.
type Thresholds struct {
	Semantic   float64
	Rating     float64
	Price      float64
	Popularity float64
}

// DefaultThresholds returns the standard highlight cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Semantic: 0.70, Rating: 0.80, Price: 0.70, Popularity: 0.70}
}

// GenerationRequest carries everything the text generator needs for one sentence.
type GenerationRequest struct {
	Query   string
	Rank    int
	Product domain.Product
	Scores  ranking.SubScores
}

// TextGenerator is the pluggable text-generation capability. The ranking
// pipeline has zero dependency on its presence.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// Config holds explanation service settings.
type Config struct {
	Thresholds    Thresholds
	Timeout       time.Duration
	MaxConcurrent int
	RatePerSec    float64
}

// Service generates explanations for ranked results.
type Service struct {
	gen        TextGenerator // nil disables generation, template only
	thresholds Thresholds
	timeout    time.Duration
	sem        chan struct{}
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates an explanation service. gen may be nil.
func New(gen TextGenerator, cfg Config, log *zap.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 8
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 20
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Service{
		gen:        gen,
		thresholds: cfg.Thresholds,
		timeout:    cfg.Timeout,
		sem:        make(chan struct{}, cfg.MaxConcurrent),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.MaxConcurrent),
		logger:     log,
	}
}

// Explain builds an explanation for one already-ranked result. It never
// returns an error: every failure path ends in the template fallback, so
// explanation outcome cannot influence ranking correctness.
func (s *Service) Explain(ctx context.Context, query string, r *result.Result) result.Explanation {
	highlights := s.Highlights(r.Scores())

	if s.gen == nil {
		metrics.ExplanationsTotal.WithLabelValues("disabled").Inc()
		return result.Explanation{
			Highlights: highlights,
			Text:       s.templateText(query, r),
		}
	}

	text, err := s.generate(ctx, query, r)
	if err != nil {
		metrics.ExplanationsTotal.WithLabelValues("fallback").Inc()
		logger.FromContext(ctx).Debug("explanation generation failed, using template",
			zap.String("product_id", r.Product().ID),
			zap.Error(err),
		)
		return result.Explanation{
			Highlights: highlights,
			Text:       s.templateText(query, r),
		}
	}

	metrics.ExplanationsTotal.WithLabelValues("generated").Inc()
	return result.Explanation{
		Highlights: highlights,
		Text:       text,
		Generated:  true,
	}
}

// generate calls the text generator under the rate and concurrency
// bounds. Exceeding either bound is treated the same as a provider
// failure: the caller falls back to the template.
func (s *Service) generate(ctx context.Context, query string, r *result.Result) (string, error) {
	if !s.limiter.Allow() {
		return "", fmt.Errorf("generation rate exceeded: %w", domain.ErrExplanationUnavailable)
	}

	select {
	case s.sem <- struct{}{}:
	default:
		return "", fmt.Errorf("too many outstanding generations: %w", domain.ErrExplanationUnavailable)
	}
	defer func() { <-s.sem }()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(ctx, GenerationRequest{
		Query:   query,
		Rank:    r.Rank(),
		Product: r.Product(),
		Scores:  r.Scores(),
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w: %w", domain.ErrExplanationUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("blank generation: %w", domain.ErrExplanationUnavailable)
	}
	return text, nil
}

// Highlights derives threshold-based tags from sub-scores. Deterministic,
// never fails.
func (s *Service) Highlights(sc ranking.SubScores) []string {
	var tags []string
	if sc.Semantic > s.thresholds.Semantic {
		tags = append(tags, TagBestMatch)
	}
	if sc.Rating > s.thresholds.Rating {
		tags = append(tags, TagTopRated)
	}
	if sc.Price > s.thresholds.Price {
		tags = append(tags, TagBestValue)
	}
	if sc.Popularity > s.thresholds.Popularity {
		tags = append(tags, TagPopularChoice)
	}
	return tags
}

// templateText builds the fallback sentence from the same thresholds
// the highlights use.
func (s *Service) templateText(query string, r *result.Result) string {
	sc := r.Scores()
	p := r.Product()

	var factors []string
	if sc.Semantic > s.thresholds.Semantic {
		factors = append(factors, fmt.Sprintf("closely matches your search %q", query))
	}
	if sc.Rating > s.thresholds.Rating {
		factors = append(factors, fmt.Sprintf("highly rated (%.1f stars)", p.Rating))
	}
	if sc.Price > s.thresholds.Price {
		factors = append(factors, "competitively priced")
	}
	if sc.Popularity > s.thresholds.Popularity {
		factors = append(factors, fmt.Sprintf("popular in %s", p.Category))
	}
	if len(factors) > 3 {
		factors = factors[:3]
	}

	prefix := rankPrefix(r.Rank())
	if len(factors) == 0 {
		return prefix + " is a strong match for your search."
	}
	return prefix + " " + strings.Join(factors, ", ") + "."
}

func rankPrefix(rank int) string {
	switch {
	case rank == 1:
		return "Ranked #1 because it"
	case rank <= 3:
		return "Top result because it"
	case rank <= 10:
		return "Highly ranked because it"
	default:
		return "Ranked here because it"
	}
}
