package result

import (
	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/domain/ranking"
)

// Explanation justifies one ranking decision. Highlights are derived
// deterministically from sub-scores; Text may come from a generative
// backend (Generated=true) or from the local template fallback.
type Explanation struct {
	Highlights []string
	Text       string
	Generated  bool
}

// Result is one scored, ranked search hit. Ephemeral: lives for the
// duration of a single request.
type Result struct {
	product     domain.Product
	similarity  float64
	scores      ranking.SubScores
	finalScore  float64
	rank        int
	explanation Explanation
}

// New creates a scored result. Rank is assigned later, after re-ranking.
func New(p domain.Product, similarity float64, scores ranking.SubScores, finalScore float64) Result {
	return Result{
		product:    p,
		similarity: similarity,
		scores:     scores,
		finalScore: finalScore,
	}
}

// Product returns the catalog record.
func (r *Result) Product() domain.Product { return r.product }

// Similarity returns the raw retrieval similarity (cosine, in [-1,1]).
func (r *Result) Similarity() float64 { return r.similarity }

// Scores returns the normalized sub-scores.
func (r *Result) Scores() ranking.SubScores { return r.scores }

// FinalScore returns the blended ranking value in [0,1].
func (r *Result) FinalScore() float64 { return r.finalScore }

// Rank returns the 1-based dense rank.
func (r *Result) Rank() int { return r.rank }

// Explanation returns the attached explanation (zero value until set).
func (r *Result) Explanation() Explanation { return r.explanation }

// SetRank assigns the dense rank.
func (r *Result) SetRank(rank int) { r.rank = rank }

// SetExplanation attaches an explanation. Scores and rank are already
// final at this point and are never touched by explanation handling.
func (r *Result) SetExplanation(e Explanation) { r.explanation = e }
