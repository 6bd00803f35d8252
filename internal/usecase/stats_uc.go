package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type OutboxStats struct {
	Pending     int `json:"pending"`
	Sent        int `json:"sent"`
	LinkedUsers int `json:"linked_users"`
}

// StatsUseCase aggregates outbox counters for the ops endpoint.
type StatsUseCase interface {
	Outbox(ctx context.Context) (*OutboxStats, error)
}

type statsUC struct {
	outbox repository.NotificationRepository
	users  repository.UserRepository
	log    *zerolog.Logger
}

func NewStatsUseCase(outbox repository.NotificationRepository, users repository.UserRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{outbox: outbox, users: users, log: logger}
}

func (s *statsUC) Outbox(ctx context.Context) (*OutboxStats, error) {
	pending, err := s.outbox.CountPending(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	sent, err := s.outbox.CountSent(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	linked, err := s.users.CountLinked(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	return &OutboxStats{Pending: pending, Sent: sent, LinkedUsers: linked}, nil
}
