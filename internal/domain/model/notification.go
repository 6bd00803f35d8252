package model

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
)

// Kind is the closed set of notification types the platform produces.
type Kind string

const (
	KindTeamApplication     Kind = "team_application"
	KindApplicationCancel   Kind = "application_cancel"
	KindChampionshipCancel  Kind = "championship_cancel"
	KindNewMatch            Kind = "new_match"
	KindMatchReschedule     Kind = "match_reschedule"
	KindPlayoffResult       Kind = "playoff_result"
	KindMatchReminder       Kind = "match_reminder"
	KindNewChampionship     Kind = "new_championship"
	KindCommitteeMessage    Kind = "committee_message"
	KindTeamInvitation      Kind = "team_invitation"
	KindCommitteeInvitation Kind = "committee_invitation"
)

// Known reports whether k belongs to the closed enumeration. Rows with an
// unknown kind are still deliverable via the raw title/body fallback.
func (k Kind) Known() bool {
	switch k {
	case KindTeamApplication, KindApplicationCancel, KindChampionshipCancel,
		KindNewMatch, KindMatchReschedule, KindPlayoffResult, KindMatchReminder,
		KindNewChampionship, KindCommitteeMessage, KindTeamInvitation,
		KindCommitteeInvitation:
		return true
	}
	return false
}

// Notification is one outbox row. Every field except the sent state is
// immutable after creation; IsSent flips false->true exactly once.
type Notification struct {
	ID           string
	UserID       int64
	Kind         Kind
	Title        string
	Body         string
	Metadata     map[string]string
	IsSent       bool
	SentAt       *time.Time
	CreatedAt    time.Time
	ScheduledFor *time.Time
}

func NewNotification(userID int64, kind Kind, title, body string, metadata map[string]string, scheduledFor *time.Time) (*Notification, error) {
	if userID <= 0 || kind == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Notification{
		ID:           ulid.Make().String(),
		UserID:       userID,
		Kind:         kind,
		Title:        title,
		Body:         body,
		Metadata:     metadata,
		CreatedAt:    time.Now(),
		ScheduledFor: scheduledFor,
	}, nil
}

// Due reports whether the row is eligible for delivery at `now`.
func (n *Notification) Due(now time.Time) bool {
	if n.IsSent {
		return false
	}
	return n.ScheduledFor == nil || !n.ScheduledFor.After(now)
}

// EncodeMetadata serializes the metadata map for storage. A nil map encodes
// as empty so the column stays NULL-free.
func EncodeMetadata(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// DecodeMetadata parses a stored metadata payload. Producers are not fully
// trusted: anything unparseable degrades to an empty map so rendering can
// still proceed with empty substitutions.
func DecodeMetadata(raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]string{}
	}
	return m
}
