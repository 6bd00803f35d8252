package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo is the durable outbox. Metadata is stored as JSONB text
// and decoded leniently on the way out: a corrupt payload becomes an empty
// map, never a failed cycle.
type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `
INSERT INTO notifications (id, user_id, kind, title, body, metadata, is_sent, sent_at, created_at, scheduled_for)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`

	md, err := model.EncodeMetadata(n.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = execSQL(ctx, r.pool, tx, q,
		n.ID, n.UserID, string(n.Kind), n.Title, n.Body, md,
		n.IsSent, n.SentAt, n.CreatedAt, n.ScheduledFor)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Notification, error) {
	const q = `
SELECT id, user_id, kind, title, body, metadata, is_sent, sent_at, created_at, scheduled_for
  FROM notifications WHERE id=$1;`

	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	n, err := scanNotification(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

// FetchDue pulls the oldest due unsent rows together with each recipient's
// delivery state. Rows of unlinked or inactive users are included on
// purpose: the dispatch loop drains them instead of retrying forever.
func (r *NotificationRepo) FetchDue(ctx context.Context, tx repository.Tx, now time.Time, limit int) ([]*repository.DueNotification, error) {
	const q = `
SELECT n.id, n.user_id, n.kind, n.title, n.body, n.metadata,
       n.is_sent, n.sent_at, n.created_at, n.scheduled_for,
       u.telegram_id, u.is_active
  FROM notifications n
  JOIN users u ON u.id = n.user_id
 WHERE NOT n.is_sent
   AND (n.scheduled_for IS NULL OR n.scheduled_for <= $1)
 ORDER BY n.created_at
 LIMIT $2;`

	rows, err := querySQL(ctx, r.pool, tx, q, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query due notifications: %w", err)
	}
	defer rows.Close()

	var out []*repository.DueNotification
	for rows.Next() {
		var (
			d   repository.DueNotification
			raw []byte
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Kind, &d.Title, &d.Body, &raw,
			&d.IsSent, &d.SentAt, &d.CreatedAt, &d.ScheduledFor,
			&d.RecipientTelegramID, &d.RecipientActive); err != nil {
			return nil, fmt.Errorf("scan due notification: %w", err)
		}
		d.Metadata = model.DecodeMetadata(raw)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due notifications: %w", err)
	}
	return out, nil
}

// MarkSent relies on the store's single-row atomicity for its idempotence:
// the WHERE clause lets only the first caller flip the flag.
func (r *NotificationRepo) MarkSent(ctx context.Context, tx repository.Tx, id string, sentAt time.Time) (bool, error) {
	const q = `UPDATE notifications SET is_sent=TRUE, sent_at=$2 WHERE id=$1 AND NOT is_sent;`

	tag, err := execSQL(ctx, r.pool, tx, q, id, sentAt)
	if err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *NotificationRepo) PurgeSentBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `DELETE FROM notifications WHERE is_sent AND sent_at <= $1;`

	tag, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sent notifications: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *NotificationRepo) CountPending(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM notifications WHERE NOT is_sent;`)
}

func (r *NotificationRepo) CountSent(ctx context.Context, tx repository.Tx) (int, error) {
	return r.count(ctx, tx, `SELECT COUNT(*) FROM notifications WHERE is_sent;`)
}

func (r *NotificationRepo) count(ctx context.Context, tx repository.Tx, q string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return n, nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var (
		n   model.Notification
		raw []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &raw,
		&n.IsSent, &n.SentAt, &n.CreatedAt, &n.ScheduledFor); err != nil {
		return nil, err
	}
	n.Metadata = model.DecodeMetadata(raw)
	return &n, nil
}
