package ranking

import (
	"math"

	"github.com/kailas-cloud/shoprank/internal/catalog"
	"github.com/kailas-cloud/shoprank/internal/domain"
	domranking "github.com/kailas-cloud/shoprank/internal/domain/ranking"
)

const neutralScore = 0.5

// candidate is a product that survived the hard filters, carried through
// enrichment and blending before it becomes a search result.
type candidate struct {
	product    domain.Product
	similarity float64
	scores     domranking.SubScores
	finalScore float64
}

// priceBounds are the min and max price over the candidate pool. Scoring
// against the pool rather than the whole catalog keeps the price signal
// discriminative within what the query actually retrieved.
type priceBounds struct {
	min float64
	max float64
}

func poolPriceBounds(cands []candidate) priceBounds {
	b := priceBounds{min: math.Inf(1), max: math.Inf(-1)}
	for i := range cands {
		p := cands[i].product.Price
		if p < b.min {
			b.min = p
		}
		if p > b.max {
			b.max = p
		}
	}
	return b
}

func (b priceBounds) degenerate() bool {
	return b.max-b.min <= 1e-9
}

// effectivePriceBounds prefers the pool's own price span. A pool too
// small or uniform to span any prices falls back to the catalog-wide
// bounds precomputed at load time.
func effectivePriceBounds(cands []candidate, stats catalog.Stats) priceBounds {
	b := poolPriceBounds(cands)
	if b.degenerate() {
		return priceBounds{min: stats.MinPrice, max: stats.MaxPrice}
	}
	return b
}

// semanticScore maps cosine similarity from [-1, 1] into [0, 1].
func semanticScore(similarity float64) float64 {
	return clamp01((similarity + 1) / 2)
}

// priceScore is inverted min-max over the given bounds: the cheapest
// candidate scores 1. Degenerate bounds (a single price) are neutral.
func priceScore(price float64, b priceBounds, intent PriceIntent) float64 {
	score := neutralScore
	if !b.degenerate() {
		score = clamp01((b.max - price) / (b.max - b.min))
	}

	switch intent {
	case IntentBudget:
		return clamp01(score * 1.5)
	case IntentPremium:
		return clamp01((1 - score) * 1.5)
	default:
		return score
	}
}

// popularityScore is log1p of the review count normalized against the
// catalog-wide bounds, so a pool of niche products does not inflate itself.
func popularityScore(reviewCount int, stats catalog.Stats) float64 {
	span := stats.MaxLogReviews - stats.MinLogReviews
	if span <= 1e-9 {
		return neutralScore
	}
	return clamp01((math.Log1p(float64(reviewCount)) - stats.MinLogReviews) / span)
}

func ratingScore(rating float64) float64 {
	return clamp01(rating / 5)
}

// enrich fills in the sub-scores and blended final score for every
// candidate in place.
func enrich(cands []candidate, stats catalog.Stats, weights domranking.Weights, intent PriceIntent) {
	bounds := effectivePriceBounds(cands, stats)
	for i := range cands {
		c := &cands[i]
		c.scores = domranking.SubScores{
			Semantic:   semanticScore(c.similarity),
			Price:      priceScore(c.product.Price, bounds, intent),
			Popularity: popularityScore(c.product.ReviewCount, stats),
			Rating:     ratingScore(c.product.Rating),
		}
		c.finalScore = weights.Blend(c.scores)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
