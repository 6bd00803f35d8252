package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, phone_number, telegram_id, first_name, last_name, is_active, created_at, updated_at`

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE id=$1;`, id)
}

func (r *UserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE phone_number=$1;`, phone)
}

func (r *UserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	return r.findOne(ctx, tx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1;`, tgID)
}

func (r *UserRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(&u.ID, &u.PhoneNumber, &u.TelegramID, &u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// BindTelegramID detaches the chat from any previous account first: Telegram
// chat ids are unique in the table, and relinking after a phone change must
// not clash with the stale row.
func (r *UserRepo) BindTelegramID(ctx context.Context, tx repository.Tx, phone string, tgID int64) (*model.User, error) {
	const unbind = `UPDATE users SET telegram_id=NULL, updated_at=now() WHERE telegram_id=$1 AND phone_number<>$2;`
	if _, err := execSQL(ctx, r.pool, tx, unbind, tgID, phone); err != nil {
		return nil, fmt.Errorf("unbind stale telegram id: %w", err)
	}

	const bind = `
UPDATE users SET telegram_id=$2, updated_at=now()
 WHERE phone_number=$1
RETURNING ` + userColumns + `;`
	row, err := pickRow(ctx, r.pool, tx, bind, phone, tgID)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(&u.ID, &u.PhoneNumber, &u.TelegramID, &u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("bind telegram id: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) CountLinked(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE is_active AND telegram_id IS NOT NULL;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count linked users: %w", err)
	}
	return n, nil
}
