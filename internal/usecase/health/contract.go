package health

import "context"

// CachePinger checks the embedding cache store availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CatalogInfo exposes the loaded catalog and index shape.
type CatalogInfo interface {
	Count() int
	Dimension() int
}
