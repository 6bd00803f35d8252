package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DailyJob is a task run once per local calendar day.
type DailyJob func(ctx context.Context) (int, error)

// DailyWorker triggers a job once per day at or after a fixed hour. The
// trigger condition is "today's window has not run yet", not an exact
// hour:minute match: a poll that lands late (busy loop, restart, clock
// skew) still fires the job instead of skipping the whole day.
type DailyWorker struct {
	name     string
	hour     int
	interval time.Duration
	job      DailyJob
	now      func() time.Time
	lastRun  time.Time
	log      *zerolog.Logger
}

func NewDailyWorker(name string, hour int, interval time.Duration, job DailyJob, logger *zerolog.Logger) *DailyWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	compLog := logger.With().Str("component", name).Logger()
	return &DailyWorker{
		name:     name,
		hour:     hour,
		interval: interval,
		job:      job,
		now:      time.Now,
		log:      &compLog,
	}
}

func (w *DailyWorker) Run(ctx context.Context) error {
	w.log.Info().Int("hour", w.hour).Msg("starting daily worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping daily worker")
			return ctx.Err()
		case <-ticker.C:
			w.maybeRun(ctx)
		}
	}
}

func (w *DailyWorker) maybeRun(ctx context.Context) {
	now := w.now()
	if !w.due(now) {
		return
	}
	// Mark the window consumed before running: a failing job waits for
	// tomorrow instead of retrying every tick.
	w.lastRun = now

	n, err := w.job(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("daily job failed")
		return
	}
	w.log.Info().Int("count", n).Msg("daily job finished")
}

func (w *DailyWorker) due(now time.Time) bool {
	if now.Hour() < w.hour {
		return false
	}
	return !sameDay(w.lastRun, now)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
