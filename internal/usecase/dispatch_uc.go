package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/metrics"
	"github.com/DMUsenkov/sports-platform-notifier/internal/render"
)

// Compile-time check
var _ DispatchUseCase = (*dispatchUC)(nil)

// DispatchUseCase drains the outbox: one bounded, FIFO batch per cycle.
type DispatchUseCase interface {
	// RunCycle fetches due rows, renders and delivers each one, and writes
	// back the sent state. Returns the number of successful deliveries.
	// A failure of one row never aborts the rest of the batch.
	RunCycle(ctx context.Context) (int, error)
}

type dispatchUC struct {
	outbox    repository.NotificationRepository
	channel   adapter.DeliveryChannel
	batchSize int
	now       func() time.Time
	log       *zerolog.Logger
}

func NewDispatchUseCase(outbox repository.NotificationRepository, channel adapter.DeliveryChannel, batchSize int, logger *zerolog.Logger) *dispatchUC {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &dispatchUC{
		outbox:    outbox,
		channel:   channel,
		batchSize: batchSize,
		now:       time.Now,
		log:       logger,
	}
}

func (d *dispatchUC) RunCycle(ctx context.Context) (int, error) {
	cycleLog := d.log.With().Str("trace_id", uuid.NewString()).Logger()

	items, err := d.outbox.FetchDue(ctx, repository.NoTX, d.now(), d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch due notifications: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}
	metrics.ObserveDispatchBatch(len(items))

	sent := 0
	for _, item := range items {
		// Cooperative shutdown: finish the in-flight row, then stop.
		if ctx.Err() != nil {
			cycleLog.Info().Int("remaining", len(items)-sent).Msg("cycle interrupted by shutdown")
			break
		}
		if d.processOne(ctx, &cycleLog, item) {
			sent++
		}
	}
	return sent, nil
}

// processOne fully resolves a single row: terminal (marked sent) or left
// pending for the next cycle. Panics and per-row errors are contained here
// so the rest of the batch keeps flowing.
func (d *dispatchUC) processOne(ctx context.Context, log *zerolog.Logger, item *repository.DueNotification) (delivered bool) {
	rowLog := log.With().
		Str("notification_id", item.ID).
		Int64("user_id", item.UserID).
		Str("kind", string(item.Kind)).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			rowLog.Error().Interface("panic", r).Msg("notification processing panicked; row skipped")
			metrics.IncDispatched("panic")
		}
	}()

	// No channel to use: the recipient never linked Telegram or was
	// deactivated. Drain the row silently instead of retrying forever.
	if !item.Reachable() {
		d.markSent(ctx, &rowLog, item.ID)
		metrics.IncDispatched("dropped")
		rowLog.Debug().Msg("recipient unreachable by state; notification drained")
		return false
	}

	msg := render.Render(&item.Notification)
	outcome := d.channel.Send(ctx, *item.RecipientTelegramID, msg.Text, msg.Actions)
	metrics.IncDispatched(outcome.String())

	switch outcome {
	case adapter.Delivered:
		d.markSent(ctx, &rowLog, item.ID)
		return true
	case adapter.Transient:
		// Leave unsent; FetchDue orders by created_at, so the retry keeps
		// its place at the front of the queue.
		rowLog.Warn().Msg("transient delivery failure; will retry next cycle")
		return false
	default: // RecipientUnreachable, Fatal
		d.markSent(ctx, &rowLog, item.ID)
		rowLog.Info().Str("outcome", outcome.String()).Msg("terminal delivery failure; notification drained")
		return false
	}
}

func (d *dispatchUC) markSent(ctx context.Context, log *zerolog.Logger, id string) {
	ok, err := d.outbox.MarkSent(ctx, repository.NoTX, id, d.now())
	if err != nil {
		// The row stays unsent and reappears next cycle. At-most-once for
		// the channel is not violated: worst case is one extra send after
		// a lost ack, which the store's idempotent MarkSent bounds.
		log.Error().Err(err).Msg("mark sent failed")
		return
	}
	if !ok {
		log.Warn().Msg("mark sent raced: row already sent")
	}
}
