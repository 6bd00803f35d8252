package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/usecase"
)

// DispatchWorker drives the outbox dispatch loop on a short fixed interval.
// Cycles never overlap: the next tick waits for the previous RunCycle to
// return, which is the single-active-cycle guarantee.
type DispatchWorker struct {
	interval time.Duration
	dispatch usecase.DispatchUseCase
	log      *zerolog.Logger
}

func NewDispatchWorker(interval time.Duration, dispatch usecase.DispatchUseCase, logger *zerolog.Logger) *DispatchWorker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	compLog := logger.With().Str("component", "DispatchWorker").Logger()
	return &DispatchWorker{
		interval: interval,
		dispatch: dispatch,
		log:      &compLog,
	}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting dispatch worker")
	// Run once on startup, then on every tick.
	w.runCycle(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping dispatch worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// runCycle logs and swallows cycle errors: a failed cycle must not stop the
// loop from running on the next interval.
func (w *DispatchWorker) runCycle(ctx context.Context) {
	sent, err := w.dispatch.RunCycle(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("dispatch cycle failed")
		return
	}
	if sent > 0 {
		w.log.Info().Int("count", sent).Msg("notifications delivered")
	}
}
