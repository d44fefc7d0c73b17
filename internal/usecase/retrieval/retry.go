package retrieval

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docretriever/internal/domain"
	"github.com/kailas-cloud/docretriever/internal/domain/document"
	logpkg "github.com/kailas-cloud/docretriever/internal/logger"
)

// Retrying re-runs a whole retrieval when the index fails.
// Request, scope, configuration and quota errors are returned immediately.
type Retrying struct {
	inner    Runner
	attempts uint
	delay    time.Duration
	logger   *zap.Logger
}

var _ Runner = (*Retrying)(nil)

// NewRetrying wraps inner. attempts <= 1 returns inner unchanged.
func NewRetrying(inner Runner, attempts uint, delay time.Duration, logger *zap.Logger) Runner {
	if attempts <= 1 {
		return inner
	}
	return &Retrying{inner: inner, attempts: attempts, delay: delay, logger: logger}
}

// Retrieve calls the inner runner with exponential backoff between attempts.
func (r *Retrying) Retrieve(ctx context.Context, req Request) ([]document.Document, error) {
	log := logpkg.FromContextOr(ctx, r.logger)

	var docs []document.Document
	err := retry.Do(
		func() error {
			var err error
			docs, err = r.inner.Retrieve(ctx, req)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, domain.ErrRetrieval) && !errors.Is(err, domain.ErrEmbeddingQuotaExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("retrying retrieval",
				zap.Uint("attempt", n+1),
				zap.Uint("max_attempts", r.attempts),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // inner errors are already typed
	}
	return docs, nil
}
