package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
)

// Compile-time check
var _ InvitationUseCase = (*invitationUC)(nil)

// InvitationUseCase relays a user's accept/decline decision to the platform.
type InvitationUseCase interface {
	Respond(ctx context.Context, verb string, kind model.InvitationKind, invitationID int64) error
}

type invitationUC struct {
	platform adapter.PlatformAPI
	log      *zerolog.Logger
}

func NewInvitationUseCase(platform adapter.PlatformAPI, logger *zerolog.Logger) *invitationUC {
	return &invitationUC{platform: platform, log: logger}
}

func (i *invitationUC) Respond(ctx context.Context, verb string, kind model.InvitationKind, invitationID int64) error {
	if kind != model.InvitationTeam && kind != model.InvitationCommittee {
		return fmt.Errorf("%w: invitation kind %q", domain.ErrInvalidArgument, kind)
	}

	var err error
	switch verb {
	case "accept":
		err = i.platform.AcceptInvitation(ctx, kind, invitationID)
	case "decline":
		err = i.platform.DeclineInvitation(ctx, kind, invitationID)
	default:
		return fmt.Errorf("%w: verb %q", domain.ErrInvalidArgument, verb)
	}
	if err != nil {
		// The cause stays in logs; the caller shows one generic failure text.
		i.log.Error().Err(err).
			Str("verb", verb).
			Str("invitation_kind", string(kind)).
			Int64("invitation_id", invitationID).
			Msg("invitation response failed")
		return err
	}
	return nil
}
