package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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
	Status Status
	Checks map[string]CheckResult
}

// Check names reported in Report.Checks.
const (
	CheckIndex     = "index"
	CheckEmbedding = "embedding"
	CheckCache     = "cache"
)

// Service coordinates health checks.
type Service struct {
	index     IndexPinger
	embedding EmbeddingChecker
	cache     IndexPinger
}

// New creates a Service. embedding can be nil.
func New(index IndexPinger, embedding EmbeddingChecker) *Service {
	return &Service{index: index, embedding: embedding}
}

// WithCache adds the embedding cache store to the checks.
func (s *Service) WithCache(cache IndexPinger) *Service {
	s.cache = cache
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[CheckIndex] = result(s.index.Ping(ctx))
	if s.embedding != nil {
		checks[CheckEmbedding] = result(s.embedding.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks[CheckCache] = result(s.cache.Ping(ctx))
	}

	// Nothing can be retrieved without the index.
	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[CheckIndex] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
