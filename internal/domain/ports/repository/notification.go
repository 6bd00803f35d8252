package repository

import (
	"context"
	"time"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

// DueNotification is an outbox row joined with the recipient's delivery
// state. FetchDue intentionally does NOT filter on reachability: rows owned
// by unlinked or deactivated users must still reach the dispatch loop so it
// can drain them instead of leaving them pending forever.
type DueNotification struct {
	model.Notification
	RecipientTelegramID *int64
	RecipientActive     bool
}

// Reachable mirrors model.User.Reachable for the joined row.
func (d *DueNotification) Reachable() bool {
	return d.RecipientTelegramID != nil && d.RecipientActive
}

type NotificationRepository interface {
	// Save inserts a new outbox row.
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Notification, error)
	// FetchDue returns unsent notifications whose scheduled_for is null or
	// has passed, oldest created_at first, truncated to limit. An empty
	// backlog yields an empty slice, not an error.
	FetchDue(ctx context.Context, tx Tx, now time.Time, limit int) ([]*DueNotification, error)
	// MarkSent flips is_sent exactly once. Returns false when the row is
	// already sent or the id is unknown.
	MarkSent(ctx context.Context, tx Tx, id string, sentAt time.Time) (bool, error)
	// PurgeSentBefore deletes sent rows with sent_at <= cutoff and reports
	// how many were removed.
	PurgeSentBefore(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
	CountPending(ctx context.Context, tx Tx) (int, error)
	CountSent(ctx context.Context, tx Tx) (int, error)
}
