package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/shoprank/internal/domain"
	"github.com/kailas-cloud/shoprank/internal/index"
)

// EmbeddingRow is one row of the precomputed embedding matrix file.
type EmbeddingRow struct {
	ProductID string    `parquet:"product_id"`
	Vector    []float32 `parquet:"vector,list"`
}

// Load reads the catalog source and the precomputed embedding matrix,
// verifies their correspondence, and builds the store plus the vector
// index. Any mismatch is fatal at startup, never tolerated at query time.
func Load(productsPath, embeddingsPath string) (*Store, *index.Index, error) {
	products, err := loadProducts(productsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}

	rows, err := parquet.ReadFile[EmbeddingRow](filepath.Clean(embeddingsPath))
	if err != nil {
		return nil, nil, fmt.Errorf("read embedding matrix %s: %w", embeddingsPath, err)
	}

	store, ix, err := Build(products, rows)
	if err != nil {
		return nil, nil, err
	}
	return store, ix, nil
}

// Build assembles the store and index from already-decoded inputs.
// Split out of Load so tests can construct small in-memory catalogs.
func Build(products []domain.Product, rows []EmbeddingRow) (*Store, *index.Index, error) {
	if len(products) != len(rows) {
		return nil, nil, fmt.Errorf("catalog/embedding cardinality mismatch: %d products, %d vectors",
			len(products), len(rows))
	}

	// The matrix must cover exactly the catalog's id set. Vectors are
	// re-ordered to match catalog order so index positions line up.
	byID := make(map[string][]float32, len(rows))
	for _, row := range rows {
		if _, dup := byID[row.ProductID]; dup {
			return nil, nil, fmt.Errorf("duplicate embedding for product %q", row.ProductID)
		}
		byID[row.ProductID] = row.Vector
	}

	ids := make([]string, len(products))
	vectors := make([][]float32, len(products))
	for i := range products {
		vec, ok := byID[products[i].ID]
		if !ok {
			return nil, nil, fmt.Errorf("no embedding for product %q", products[i].ID)
		}
		ids[i] = products[i].ID
		vectors[i] = vec
	}

	ix, err := index.New(ids, vectors)
	if err != nil {
		return nil, nil, fmt.Errorf("build index: %w", err)
	}

	store, err := New(products, ix.Dimension())
	if err != nil {
		return nil, nil, fmt.Errorf("build catalog: %w", err)
	}

	return store, ix, nil
}

func loadProducts(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return products, nil
}
