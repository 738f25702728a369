package recommend

import (
	"context"
	"errors"
	"math"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprank/internal/catalog"
	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/index"
)

func unit(angle float64) []float32 {
	return []float32{float32(math.Cos(angle)), float32(math.Sin(angle))}
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "e1", Title: "Sony WH-1000XM5 Wireless Noise Canceling Headphones", Category: "Electronics", Price: 99.99, Rating: 4.5, ReviewCount: 1200},
		{ID: "e2", Title: "Anker USB-C Charger", Category: "Electronics", Price: 19.99, Rating: 4.0, ReviewCount: 5000},
		{ID: "h1", Title: "Lodge Cast Iron Skillet", Category: "Home & Kitchen", Price: 29.99, Rating: 4.8, ReviewCount: 15},
		{ID: "c1", Title: "Nike Air Zoom Pegasus", Category: "Clothing", Price: 79.99, Rating: 4.2, ReviewCount: 340},
		{ID: "b1", Title: "The Pragmatic Programmer", Category: "Books & Media", Price: 39.99, Rating: 4.9, ReviewCount: 2100},
	}
}

func testService(t *testing.T, adjacency map[string][]string) *Service {
	t.Helper()
	products := testProducts()
	ids := make([]string, len(products))
	vectors := [][]float32{unit(0), unit(0.1), unit(0.2), unit(0.5), unit(1.0)}
	for i, p := range products {
		ids[i] = p.ID
	}
	ix, err := index.New(ids, vectors)
	if err != nil {
		t.Fatalf("index.New() error = %v", err)
	}
	cat, err := catalog.New(products, 2)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return New(ix, cat, adjacency, zap.NewNop())
}

func TestSimilar_ExcludesSelfAndOrders(t *testing.T) {
	svc := testService(t, nil)

	recs, err := svc.Similar(context.Background(), "e1", 2)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	if recs[0].Product.ID != "e2" || recs[1].Product.ID != "h1" {
		t.Errorf("order = [%s %s], want [e2 h1]", recs[0].Product.ID, recs[1].Product.ID)
	}
	if recs[0].Similarity < recs[1].Similarity {
		t.Errorf("similarities not descending: %v < %v", recs[0].Similarity, recs[1].Similarity)
	}
	for _, r := range recs {
		if r.Product.ID == "e1" {
			t.Error("source product leaked into its own recommendations")
		}
	}
}

func TestSimilar_ReasonByCategory(t *testing.T) {
	svc := testService(t, nil)

	recs, err := svc.Similar(context.Background(), "e1", 3)
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	byID := map[string]Recommendation{}
	for _, r := range recs {
		byID[r.Product.ID] = r
	}
	if got := byID["e2"].Reason; got != "Also in Electronics" {
		t.Errorf("same-category reason = %q", got)
	}
	if got := byID["h1"].Reason; got != "Similar product based on your interest" {
		t.Errorf("cross-category reason = %q", got)
	}
}

func TestSimilar_UnknownProduct(t *testing.T) {
	svc := testService(t, nil)

	_, err := svc.Similar(context.Background(), "nope", 3)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("Similar() error = %v, want ErrProductNotFound", err)
	}
}

func TestComplementary_AdjacentCategoriesOnly(t *testing.T) {
	svc := testService(t, nil)

	// Electronics is adjacent to Home & Kitchen and Toys & Games.
	recs, err := svc.Complementary(context.Background(), "e1", 5)
	if err != nil {
		t.Fatalf("Complementary() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	if recs[0].Product.ID != "h1" {
		t.Errorf("rec = %s, want h1", recs[0].Product.ID)
	}
	if recs[0].Reason != "Pairs well with Sony WH-1000XM5 Wireless Noise" {
		t.Errorf("reason = %q", recs[0].Reason)
	}
}

func TestComplementary_RanksBySimilarity(t *testing.T) {
	adjacency := map[string][]string{
		"Electronics": {"Home & Kitchen", "Clothing", "Books & Media"},
	}
	svc := testService(t, adjacency)

	recs, err := svc.Complementary(context.Background(), "e1", 5)
	if err != nil {
		t.Fatalf("Complementary() error = %v", err)
	}
	want := []string{"h1", "c1", "b1"}
	if len(recs) != len(want) {
		t.Fatalf("len(recs) = %d, want %d", len(recs), len(want))
	}
	for i, id := range want {
		if recs[i].Product.ID != id {
			t.Errorf("position %d = %s, want %s", i, recs[i].Product.ID, id)
		}
	}
}

func TestComplementary_NoAdjacencyMeansEmpty(t *testing.T) {
	adjacency := map[string][]string{"Electronics": {"Home & Kitchen"}}
	svc := testService(t, adjacency)

	recs, err := svc.Complementary(context.Background(), "c1", 5)
	if err != nil {
		t.Fatalf("Complementary() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("len(recs) = %d, want 0", len(recs))
	}
}

func TestComplementary_UnknownProduct(t *testing.T) {
	svc := testService(t, nil)

	_, err := svc.Complementary(context.Background(), "nope", 5)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("Complementary() error = %v, want ErrProductNotFound", err)
	}
}

func TestComplementary_TruncatesToCount(t *testing.T) {
	adjacency := map[string][]string{
		"Electronics": {"Home & Kitchen", "Clothing", "Books & Media"},
	}
	svc := testService(t, adjacency)

	recs, err := svc.Complementary(context.Background(), "e1", 2)
	if err != nil {
		t.Fatalf("Complementary() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len(recs) = %d, want 2", len(recs))
	}
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	title := "Crème brûlée torch für die Küche"

	got := truncate(title, 10)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate() = %q, invalid UTF-8", got)
	}
	if want := "Crème brûl"; got != want {
		t.Errorf("truncate() = %q, want %q", got, want)
	}

	if got := truncate(title, 100); got != title {
		t.Errorf("truncate() shortened %q below its length", title)
	}
}
