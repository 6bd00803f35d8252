package model

import "time"

// Read models for the league platform API. The platform owns these entities;
// the notifier only displays them and materializes match reminders.

type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Sport     string `json:"sport"`
	City      string `json:"city"`
	Captain   string `json:"captain"`
	IsCaptain bool   `json:"is_captain,omitempty"` // the requesting user captains this team
}

// TeamDetails is the expanded single-team view with the full member list
// and the win/loss record.
type TeamDetails struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Sport       string         `json:"sport"`
	MemberCount int            `json:"count_member"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"loss"`
	Members     []RosterMember `json:"members"`
}

type Championship struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Sport    string `json:"sport"`
	City     string `json:"city"`
	Status   string `json:"status"` // active | past
	Position int    `json:"position,omitempty"`
}

type ChampionshipStage struct {
	Name        string `json:"name"`
	IsPublished bool   `json:"is_published"`
}

// ChampionshipDetails is the expanded single-championship view, also used
// for recommendation listings.
type ChampionshipDetails struct {
	ID                  int64               `json:"tournament_id"`
	Name                string              `json:"name"`
	Sport               string              `json:"sport"`
	City                string              `json:"city"`
	TeamSize            int                 `json:"team_members_count"`
	ApplicationDeadline string              `json:"application_deadline"`
	Description         string              `json:"description,omitempty"`
	Stages              []ChampionshipStage `json:"stages,omitempty"`
	OrgName             string              `json:"org_name,omitempty"`
	IsStopped           bool                `json:"is_stopped,omitempty"`
}

type Match struct {
	ID             int64     `json:"id"`
	TournamentName string    `json:"tournament_name"`
	HomeTeamID     int64     `json:"home_team_id"`
	HomeTeamName   string    `json:"home_team_name"`
	AwayTeamID     int64     `json:"away_team_id"`
	AwayTeamName   string    `json:"away_team_name"`
	LocationName   string    `json:"location_name"`
	StartTime      time.Time `json:"start_time"`
}

// OpponentOf returns the name of the other side for a given roster's team.
func (m Match) OpponentOf(teamID int64) string {
	if teamID == m.HomeTeamID {
		return m.AwayTeamName
	}
	return m.HomeTeamName
}

type RosterMember struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsCaptain bool   `json:"is_captain,omitempty"`
}

type Roster struct {
	TeamID  int64          `json:"team_id"`
	Members []RosterMember `json:"members"`
}

// InvitationKind distinguishes the two invitation flows the platform runs.
type InvitationKind string

const (
	InvitationTeam      InvitationKind = "team"
	InvitationCommittee InvitationKind = "committee"
)

type Invitation struct {
	ID       int64          `json:"id"`
	Kind     InvitationKind `json:"kind"`
	FromName string         `json:"from_name"` // team or committee name
	Message  string         `json:"message,omitempty"`
}
