package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/metrics"
)

// Compile-time check
var _ ReminderUseCase = (*reminderUC)(nil)

// ReminderUseCase materializes match-reminder rows for every roster member
// of matches played tomorrow.
type ReminderUseCase interface {
	// CreateMatchReminders returns how many reminders were enqueued. A
	// schedule-API failure degrades to zero reminders, logged, not raised.
	CreateMatchReminders(ctx context.Context) (int, error)
}

type reminderUC struct {
	platform adapter.PlatformAPI
	users    repository.UserRepository
	outbox   repository.NotificationRepository
	now      func() time.Time
	log      *zerolog.Logger
}

func NewReminderUseCase(platform adapter.PlatformAPI, users repository.UserRepository, outbox repository.NotificationRepository, logger *zerolog.Logger) *reminderUC {
	return &reminderUC{
		platform: platform,
		users:    users,
		outbox:   outbox,
		now:      time.Now,
		log:      logger,
	}
}

func (r *reminderUC) CreateMatchReminders(ctx context.Context) (int, error) {
	matches, err := r.platform.UpcomingMatches(ctx, 2)
	if err != nil {
		r.log.Warn().Err(err).Msg("schedule API unavailable; no reminders this run")
		return 0, nil
	}

	dayStart, dayEnd := r.tomorrow()
	created := 0
	for _, m := range matches {
		if m.StartTime.Before(dayStart) || !m.StartTime.Before(dayEnd) {
			continue
		}
		created += r.remindTeam(ctx, m, m.HomeTeamID)
		created += r.remindTeam(ctx, m, m.AwayTeamID)
	}
	if created > 0 {
		metrics.AddReminders(created)
		r.log.Info().Int("count", created).Msg("match reminders created")
	}
	return created, nil
}

// tomorrow is the full local calendar day following the current one.
func (r *reminderUC) tomorrow() (time.Time, time.Time) {
	now := r.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, 1)
}

func (r *reminderUC) remindTeam(ctx context.Context, m model.Match, teamID int64) int {
	roster, err := r.platform.TeamRoster(ctx, teamID)
	if err != nil {
		r.log.Warn().Err(err).Int64("team_id", teamID).Int64("match_id", m.ID).Msg("roster unavailable; team skipped")
		return 0
	}

	created := 0
	for _, member := range roster.Members {
		user, err := r.users.FindByID(ctx, repository.NoTX, member.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				r.log.Error().Err(err).Int64("user_id", member.UserID).Msg("user lookup failed")
			}
			continue
		}
		// Only known, active, linked participants get a row; the rest would
		// be silently dropped by dispatch anyway.
		if !user.Reachable() {
			continue
		}

		n, err := model.NewNotification(user.ID, model.KindMatchReminder,
			"Напоминание о матче",
			"Завтра у вас матч против команды "+m.OpponentOf(teamID)+".",
			map[string]string{
				"tournament_name": m.TournamentName,
				"opponent_name":   m.OpponentOf(teamID),
				"location_name":   m.LocationName,
				"match_date":      m.StartTime.Format("02.01.2006"),
				"match_time":      m.StartTime.Format("15:04"),
			}, nil)
		if err != nil {
			r.log.Error().Err(err).Int64("user_id", user.ID).Msg("build reminder failed")
			continue
		}
		if err := r.outbox.Save(ctx, repository.NoTX, n); err != nil {
			r.log.Error().Err(err).Int64("user_id", user.ID).Int64("match_id", m.ID).Msg("enqueue reminder failed")
			continue
		}
		created++
	}
	return created
}
