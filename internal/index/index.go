// Package index implements a flat inner-product vector index over a
// fixed set of unit-normalized embeddings. Built once at startup,
// read concurrently without locking; a catalog refresh builds a new
// index and swaps the pointer.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/shoprank/internal/domain"
)

// unitNormTolerance bounds how far a stored vector's L2 norm may drift from 1.
const unitNormTolerance = 1e-3

// Hit is a single nearest-neighbor match.
type Hit struct {
	ID         string
	Similarity float64
}

// Index holds one embedding per product in insertion order.
type Index struct {
	ids     []string
	vectors [][]float32
	byID    map[string]int
	dim     int
}

// New builds an index from aligned id and vector slices.
// Every vector must share one dimension and be unit-normalized;
// violations are construction failures, never tolerated at query time.
func New(ids []string, vectors [][]float32) (*Index, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("ids/vectors cardinality mismatch: %d vs %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("index requires at least one vector")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("zero-dimension vector for %q", ids[0])
	}

	byID := make(map[string]int, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("empty id at position %d", i)
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate id %q", id)
		}
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("%w: %q has dimension %d, want %d",
				domain.ErrVectorDimMismatch, id, len(vectors[i]), dim)
		}
		if err := checkUnitNorm(vectors[i]); err != nil {
			return nil, fmt.Errorf("vector %q: %w", id, err)
		}
		byID[id] = i
	}

	return &Index{ids: ids, vectors: vectors, byID: byID, dim: dim}, nil
}

// Search returns up to n nearest neighbors of vec, ordered by similarity
// descending with ties broken by id ascending for determinism.
func (ix *Index) Search(vec []float32, n int) ([]Hit, error) {
	if len(vec) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, want %d",
			domain.ErrVectorDimMismatch, len(vec), ix.dim)
	}
	if n <= 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, len(ix.ids))
	for i, row := range ix.vectors {
		hits[i] = Hit{ID: ix.ids[i], Similarity: dot(row, vec)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})

	if n < len(hits) {
		hits = hits[:n]
	}
	return hits, nil
}

// Vector returns the stored embedding for id.
func (ix *Index) Vector(id string) ([]float32, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return nil, false
	}
	return ix.vectors[i], true
}

// Size returns the number of indexed vectors.
func (ix *Index) Size() int { return len(ix.ids) }

// Dimension returns the shared vector dimension.
func (ix *Index) Dimension() int { return ix.dim }

func checkUnitNorm(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1) > unitNormTolerance {
		return fmt.Errorf("not unit-normalized: L2 norm %v", norm)
	}
	return nil
}

func dot(a []float32, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
