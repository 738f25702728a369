package ranking

import "fmt"

// weightSumTolerance absorbs float accumulation noise when validating the weight sum.
const weightSumTolerance = 1e-6

// Weights holds the blending coefficients of the scoring model.
// All four must be non-negative and sum to 1.
type Weights struct {
	Semantic   float64
	Price      float64
	Popularity float64
	Rating     float64
}

// DefaultWeights favor semantic match while keeping every business signal in play.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.50,
		Price:      0.20,
		Popularity: 0.20,
		Rating:     0.10,
	}
}

// Validate checks the startup invariants of the weight vector.
func (w Weights) Validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"semantic", w.Semantic},
		{"price", w.Price},
		{"popularity", w.Popularity},
		{"rating", w.Rating},
	} {
		if v.value < 0 {
			return fmt.Errorf("weight %s must be >= 0, got %v", v.name, v.value)
		}
	}

	sum := w.Semantic + w.Price + w.Popularity + w.Rating
	if diff := sum - 1; diff > weightSumTolerance || diff < -weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	return nil
}

// SubScores are the normalized [0,1] signals feeding the final score.
type SubScores struct {
	Semantic   float64 `json:"semantic"`
	Price      float64 `json:"price"`
	Popularity float64 `json:"popularity"`
	Rating     float64 `json:"rating"`
}

// Blend fuses sub-scores into one final score. Pure function: for valid
// weights and sub-scores in [0,1] the result is always in [0,1].
func (w Weights) Blend(s SubScores) float64 {
	return w.Semantic*s.Semantic +
		w.Price*s.Price +
		w.Popularity*s.Popularity +
		w.Rating*s.Rating
}
