package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search still works, possibly
	// without caching or live explanations.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog or index failed to load.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status        Status
	Checks        map[string]CheckResult
	ProductCount  int
	EmbeddingDims int
}

// Service coordinates health checks.
type Service struct {
	catalog   CatalogInfo
	embedding EmbeddingChecker
	cache     CachePinger
}

// New creates a Service. embedding and cache can be nil.
func New(cat CatalogInfo, embedding EmbeddingChecker, cache CachePinger) *Service {
	return &Service{catalog: cat, embedding: embedding, cache: cache}
}

// Check runs health checks against all components. The catalog check is
// load-bearing: search cannot answer without it, so its failure makes the
// whole service unhealthy rather than degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	catalogOK := s.catalog != nil && s.catalog.Count() > 0
	if catalogOK {
		checks["catalog"] = CheckOK
	} else {
		checks["catalog"] = CheckError
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !catalogOK {
		status = Unhealthy
	}

	report := Report{Status: status, Checks: checks}
	if catalogOK {
		report.ProductCount = s.catalog.Count()
		report.EmbeddingDims = s.catalog.Dimension()
	}
	return report
}
