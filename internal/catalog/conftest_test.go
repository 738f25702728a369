package catalog

import (
	"math"
	"testing"

	"github.com/kailas-cloud/shoprank/internal/domain"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Title: "Wireless Headphones", Category: "Electronics", Brand: "Sony",
			Price: 99.99, Rating: 4.5, ReviewCount: 1200},
		{ID: "p2", Title: "Running Shoes", Category: "Sports & Outdoors", Brand: "Nike",
			Price: 79.99, Rating: 4.2, ReviewCount: 340},
		{ID: "p3", Title: "Cast Iron Skillet", Category: "Home & Kitchen", Brand: "Lodge",
			Price: 29.99, Rating: 4.8, ReviewCount: 0},
	}
}

// testVector returns the 2D unit vector at the given angle.
func testVector(angle float64) []float32 {
	return []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
}

func testRows() []EmbeddingRow {
	return []EmbeddingRow{
		{ProductID: "p1", Vector: testVector(0.1)},
		{ProductID: "p2", Vector: testVector(0.9)},
		{ProductID: "p3", Vector: testVector(1.7)},
	}
}

func mustStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(testProducts(), 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}
