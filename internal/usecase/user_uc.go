package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
	"github.com/DMUsenkov/sports-platform-notifier/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase covers the phone-number linking flow and user lookups the bot
// front end needs.
type UserUseCase interface {
	// LinkPhone binds the Telegram chat to the platform account registered
	// with this phone. Returns domain.ErrPhoneNotRegistered when no such
	// account exists.
	LinkPhone(ctx context.Context, phone string, tgID int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

func (u *userUC) LinkPhone(ctx context.Context, phone string, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.LinkPhone")()

	phone = normalizePhone(phone)
	if phone == "" || tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	var user *model.User
	// Find-and-bind under one transaction so two /start taps cannot bind
	// the same phone to different chats.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.users.FindByPhone(ctx, tx, phone)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrPhoneNotRegistered
			}
			return err
		}
		if existing.TelegramID != nil && *existing.TelegramID == tgID {
			user = existing // already linked to this chat; idempotent
			return nil
		}
		bound, err := u.users.BindTelegramID(ctx, tx, phone, tgID)
		if err != nil {
			return err
		}
		user = bound
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Int64("user_id", user.ID).Int64("tg_id", tgID).Msg("telegram account linked")
	return user, nil
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

// normalizePhone strips formatting noise so "+7 (999) 000-11-22" and
// "79990001122" match the same account.
func normalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "8") && len(digits) == 11 {
		digits = "7" + digits[1:]
	}
	return "+" + digits
}
