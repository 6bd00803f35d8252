package adapter

import "context"

// Outcome classifies one delivery attempt. The dispatch loop decides the
// row's fate from this four-way taxonomy alone.
type Outcome int

const (
	// Delivered: the message reached the recipient.
	Delivered Outcome = iota
	// RecipientUnreachable: blocked, deactivated, or chat gone. Terminal.
	RecipientUnreachable
	// Transient: transport or rate-limit failure; retry next cycle.
	Transient
	// Fatal: malformed request or unexpected API response. Terminal, so a
	// poison row cannot be reprocessed forever.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case RecipientUnreachable:
		return "unreachable"
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	}
	return "unknown"
}

// Terminal reports whether the row must be marked sent after this outcome.
func (o Outcome) Terminal() bool { return o != Transient }

// Action is a rendered inline control attached to a message, e.g. the
// accept/decline pair on an invitation.
type Action struct {
	Label          string
	Verb           string // accept | decline
	InvitationKind string // team | committee
	InvitationID   string
}

// CallbackData is the wire form the presentation layer round-trips through
// Telegram callback queries: "<verb>_<kind>_<id>".
func (a Action) CallbackData() string {
	return a.Verb + "_" + a.InvitationKind + "_" + a.InvitationID
}

// DeliveryChannel is the outbound push transport. One call per notification.
type DeliveryChannel interface {
	Send(ctx context.Context, telegramID int64, text string, actions []Action) Outcome
}
