package ranking

import (
	"math"
	"testing"

	"github.com/kailas-cloud/shoprank/internal/catalog"
	"github.com/kailas-cloud/shoprank/internal/domain"
	domranking "github.com/kailas-cloud/shoprank/internal/domain/ranking"
)

const scoreTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < scoreTolerance
}

func TestSemanticScore(t *testing.T) {
	tests := []struct {
		similarity float64
		want       float64
	}{
		{1, 1},
		{-1, 0},
		{0, 0.5},
		{0.5, 0.75},
		{1.2, 1},  // clamped
		{-1.2, 0}, // clamped
	}
	for _, tt := range tests {
		if got := semanticScore(tt.similarity); !almostEqual(got, tt.want) {
			t.Errorf("semanticScore(%v) = %v, want %v", tt.similarity, got, tt.want)
		}
	}
}

func TestPriceScore(t *testing.T) {
	b := priceBounds{min: 10, max: 110}

	if got := priceScore(10, b, IntentNone); !almostEqual(got, 1) {
		t.Errorf("cheapest score = %v, want 1", got)
	}
	if got := priceScore(110, b, IntentNone); !almostEqual(got, 0) {
		t.Errorf("most expensive score = %v, want 0", got)
	}
	if got := priceScore(60, b, IntentNone); !almostEqual(got, 0.5) {
		t.Errorf("midpoint score = %v, want 0.5", got)
	}
}

func TestPriceScore_DegenerateBoundsAreNeutral(t *testing.T) {
	b := priceBounds{min: 25, max: 25}
	if got := priceScore(25, b, IntentNone); !almostEqual(got, neutralScore) {
		t.Errorf("degenerate bounds score = %v, want %v", got, neutralScore)
	}
}

func TestEffectivePriceBounds_SingleCandidateFallsBackToCatalog(t *testing.T) {
	cands := []candidate{
		{product: domain.Product{ID: "p5", Price: 299.99}},
	}
	stats := catalog.Stats{MinPrice: 19.99, MaxPrice: 299.99}

	b := effectivePriceBounds(cands, stats)
	if !almostEqual(b.min, 19.99) || !almostEqual(b.max, 299.99) {
		t.Fatalf("bounds = [%v, %v], want catalog [19.99, 299.99]", b.min, b.max)
	}

	// The catalog's most expensive product must not look neutral just
	// because it was retrieved alone.
	if got := priceScore(299.99, b, IntentNone); !almostEqual(got, 0) {
		t.Errorf("catalog-max price score = %v, want 0", got)
	}
}

func TestEffectivePriceBounds_PoolSpanWins(t *testing.T) {
	cands := []candidate{
		{product: domain.Product{ID: "a", Price: 40}},
		{product: domain.Product{ID: "b", Price: 90}},
	}
	stats := catalog.Stats{MinPrice: 10, MaxPrice: 500}

	b := effectivePriceBounds(cands, stats)
	if !almostEqual(b.min, 40) || !almostEqual(b.max, 90) {
		t.Errorf("bounds = [%v, %v], want pool [40, 90]", b.min, b.max)
	}
}

func TestEnrich_DegeneratePoolUsesCatalogBounds(t *testing.T) {
	cands := []candidate{
		{product: domain.Product{ID: "p5", Price: 299.99, Rating: 4.7, ReviewCount: 800}, similarity: 0.9},
	}
	stats := catalog.Stats{
		MinPrice: 19.99, MaxPrice: 299.99,
		MinLogReviews: 0, MaxLogReviews: math.Log1p(5000),
	}

	enrich(cands, stats, domranking.DefaultWeights(), IntentNone)

	if got := cands[0].scores.Price; !almostEqual(got, 0) {
		t.Errorf("price score = %v, want 0 via catalog bounds", got)
	}
}

func TestEnrich_DegenerateCatalogStaysNeutral(t *testing.T) {
	cands := []candidate{
		{product: domain.Product{ID: "only", Price: 25, Rating: 4, ReviewCount: 10}, similarity: 0.5},
	}
	stats := catalog.Stats{
		MinPrice: 25, MaxPrice: 25,
		MinLogReviews: 0, MaxLogReviews: math.Log1p(10),
	}

	enrich(cands, stats, domranking.DefaultWeights(), IntentNone)

	if got := cands[0].scores.Price; !almostEqual(got, neutralScore) {
		t.Errorf("price score = %v, want neutral %v", got, neutralScore)
	}
}

func TestPriceScore_BudgetIntentBoosts(t *testing.T) {
	b := priceBounds{min: 10, max: 110}

	// 0.5 base boosted to 0.75.
	if got := priceScore(60, b, IntentBudget); !almostEqual(got, 0.75) {
		t.Errorf("boosted midpoint = %v, want 0.75", got)
	}
	// 0.8 base would boost past 1; clamped.
	if got := priceScore(30, b, IntentBudget); !almostEqual(got, 1) {
		t.Errorf("boosted cheap = %v, want 1 (clamped)", got)
	}
}

func TestPriceScore_PremiumIntentInverts(t *testing.T) {
	b := priceBounds{min: 10, max: 110}

	if got := priceScore(110, b, IntentPremium); !almostEqual(got, 1) {
		t.Errorf("premium most expensive = %v, want 1 (clamped)", got)
	}
	if got := priceScore(10, b, IntentPremium); !almostEqual(got, 0) {
		t.Errorf("premium cheapest = %v, want 0", got)
	}
}

func TestPopularityScore(t *testing.T) {
	stats := catalog.Stats{
		MinLogReviews: math.Log1p(0),
		MaxLogReviews: math.Log1p(10000),
	}

	if got := popularityScore(0, stats); !almostEqual(got, 0) {
		t.Errorf("zero reviews = %v, want 0", got)
	}
	if got := popularityScore(10000, stats); !almostEqual(got, 1) {
		t.Errorf("max reviews = %v, want 1", got)
	}
	mid := popularityScore(100, stats)
	if mid <= 0 || mid >= 1 {
		t.Errorf("midrange reviews = %v, want in (0, 1)", mid)
	}
	// Log scale: 100 reviews land well above the linear 1% mark.
	if mid < 0.4 {
		t.Errorf("midrange reviews = %v, want log-compressed above 0.4", mid)
	}
}

func TestPopularityScore_DegenerateCatalogIsNeutral(t *testing.T) {
	stats := catalog.Stats{MinLogReviews: math.Log1p(50), MaxLogReviews: math.Log1p(50)}
	if got := popularityScore(50, stats); !almostEqual(got, neutralScore) {
		t.Errorf("degenerate score = %v, want %v", got, neutralScore)
	}
}

func TestRatingScore(t *testing.T) {
	if got := ratingScore(5); !almostEqual(got, 1) {
		t.Errorf("ratingScore(5) = %v, want 1", got)
	}
	if got := ratingScore(0); !almostEqual(got, 0) {
		t.Errorf("ratingScore(0) = %v, want 0", got)
	}
	if got := ratingScore(4.5); !almostEqual(got, 0.9) {
		t.Errorf("ratingScore(4.5) = %v, want 0.9", got)
	}
}

func TestEnrich_BlendsWithWeights(t *testing.T) {
	cands := []candidate{
		{product: domain.Product{ID: "a", Price: 10, Rating: 5, ReviewCount: 100}, similarity: 1},
		{product: domain.Product{ID: "b", Price: 110, Rating: 2.5, ReviewCount: 0}, similarity: 0},
	}
	stats := catalog.Stats{MinLogReviews: 0, MaxLogReviews: math.Log1p(100)}
	weights := domranking.DefaultWeights()

	enrich(cands, stats, weights, IntentNone)

	for i := range cands {
		s := cands[i].scores
		for name, v := range map[string]float64{
			"semantic": s.Semantic, "price": s.Price,
			"popularity": s.Popularity, "rating": s.Rating,
		} {
			if v < 0 || v > 1 {
				t.Errorf("candidate %s %s score %v out of [0, 1]", cands[i].product.ID, name, v)
			}
		}
		if want := weights.Blend(s); !almostEqual(cands[i].finalScore, want) {
			t.Errorf("candidate %s finalScore = %v, want %v", cands[i].product.ID, cands[i].finalScore, want)
		}
	}

	if cands[0].finalScore <= cands[1].finalScore {
		t.Errorf("dominant candidate scored %v, not above %v", cands[0].finalScore, cands[1].finalScore)
	}
	if !almostEqual(cands[0].finalScore, 1) {
		t.Errorf("all-dominant candidate finalScore = %v, want 1", cands[0].finalScore)
	}
}

func TestSortCandidates_TieBreaks(t *testing.T) {
	cands := []candidate{
		{product: domain.Product{ID: "c", ReviewCount: 10}, finalScore: 0.5},
		{product: domain.Product{ID: "a", ReviewCount: 10}, finalScore: 0.5},
		{product: domain.Product{ID: "b", ReviewCount: 90}, finalScore: 0.5},
		{product: domain.Product{ID: "d", ReviewCount: 1}, finalScore: 0.9},
	}

	sortCandidates(cands)

	want := []string{"d", "b", "a", "c"}
	for i, id := range want {
		if cands[i].product.ID != id {
			t.Errorf("position %d = %s, want %s", i, cands[i].product.ID, id)
		}
	}
}
