package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

func writeFixtures(t *testing.T, rows []EmbeddingRow) (productsPath, embeddingsPath string) {
	t.Helper()
	dir := t.TempDir()

	productsPath = filepath.Join(dir, "products.json")
	data, err := json.Marshal(testProducts())
	if err != nil {
		t.Fatalf("marshal products: %v", err)
	}
	if err := os.WriteFile(productsPath, data, 0o600); err != nil {
		t.Fatalf("write products: %v", err)
	}

	embeddingsPath = filepath.Join(dir, "embeddings.parquet")
	f, err := os.Create(embeddingsPath)
	if err != nil {
		t.Fatalf("create embeddings: %v", err)
	}
	w := parquet.NewGenericWriter[EmbeddingRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return productsPath, embeddingsPath
}

func TestLoad_RoundTrip(t *testing.T) {
	productsPath, embeddingsPath := writeFixtures(t, testRows())

	store, ix, err := Load(productsPath, embeddingsPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Count() != 3 || ix.Size() != 3 {
		t.Fatalf("expected 3 products and 3 vectors, got %d/%d", store.Count(), ix.Size())
	}
	if ix.Dimension() != 2 {
		t.Fatalf("expected dimension 2, got %d", ix.Dimension())
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	productsPath, embeddingsPath := writeFixtures(t, testRows())

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.json"), embeddingsPath); err == nil {
		t.Fatal("expected error for missing products file")
	}
	if _, _, err := Load(productsPath, filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Fatal("expected error for missing embeddings file")
	}
}

func TestLoad_CountMismatchFatal(t *testing.T) {
	productsPath, embeddingsPath := writeFixtures(t, testRows()[:2])

	if _, _, err := Load(productsPath, embeddingsPath); err == nil {
		t.Fatal("expected error for catalog/embedding count mismatch")
	}
}
