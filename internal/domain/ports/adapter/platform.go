package adapter

import (
	"context"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

// PlatformAPI is the remote sports-league platform. All list calls degrade
// to an empty slice plus error; callers decide whether the error is fatal
// (user-facing request) or a logged no-op (periodic jobs).
type PlatformAPI interface {
	UserTeams(ctx context.Context, userID int64) ([]model.Team, error)
	UserChampionships(ctx context.Context, userID int64) ([]model.Championship, error)
	UserMatches(ctx context.Context, userID int64, status string) ([]model.Match, error)
	UserInvitations(ctx context.Context, userID int64) ([]model.Invitation, error)

	// RecommendedChampionships lists open championships the platform
	// suggests for this user.
	RecommendedChampionships(ctx context.Context, userID int64) ([]model.ChampionshipDetails, error)
	ChampionshipDetails(ctx context.Context, championshipID int64) (*model.ChampionshipDetails, error)
	TeamDetails(ctx context.Context, teamID int64) (*model.TeamDetails, error)

	// UpcomingMatches lists matches starting within the next `days` days.
	UpcomingMatches(ctx context.Context, days int) ([]model.Match, error)
	TeamRoster(ctx context.Context, teamID int64) (*model.Roster, error)

	AcceptInvitation(ctx context.Context, kind model.InvitationKind, invitationID int64) error
	DeclineInvitation(ctx context.Context, kind model.InvitationKind, invitationID int64) error
	// DeclineMatch withdraws a team from a match with a free-form reason
	// shown to the organizers.
	DeclineMatch(ctx context.Context, matchID, teamID int64, reason string) error
}
