package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/metrics"
)

// Compile-time check
var _ RetentionUseCase = (*retentionUC)(nil)

// RetentionUseCase removes sent notifications once they age past the
// retention window. Unsent rows are never touched.
type RetentionUseCase interface {
	PurgeOldSent(ctx context.Context) (int, error)
}

type retentionUC struct {
	outbox    repository.NotificationRepository
	retention time.Duration
	now       func() time.Time
	log       *zerolog.Logger
}

func NewRetentionUseCase(outbox repository.NotificationRepository, retentionDays int, logger *zerolog.Logger) *retentionUC {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &retentionUC{
		outbox:    outbox,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
		log:       logger,
	}
}

// PurgeOldSent is idempotent: a second call in the same window finds
// nothing left to delete and returns zero.
func (r *retentionUC) PurgeOldSent(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.retention)
	n, err := r.outbox.PurgeSentBefore(ctx, repository.NoTX, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddPurged(n)
		r.log.Info().Int("count", n).Time("cutoff", cutoff).Msg("old sent notifications purged")
	}
	return n, nil
}
