package repository

import (
	"context"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
	FindByPhone(ctx context.Context, tx Tx, phone string) (*model.User, error)
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	// BindTelegramID attaches a Telegram chat to the account found by phone.
	// Returns domain.ErrNotFound when no account has that phone number.
	BindTelegramID(ctx context.Context, tx Tx, phone string, tgID int64) (*model.User, error)
	CountLinked(ctx context.Context, tx Tx) (int, error)
}
