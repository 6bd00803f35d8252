package model

import (
	"time"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
)

// User mirrors a platform account as the notifier sees it. Accounts are
// created on the platform side; the bot only binds a Telegram chat to the
// phone number the account was registered with.
type User struct {
	ID          int64
	PhoneNumber string
	FirstName   string
	LastName    string
	TelegramID  *int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewUser(id int64, phone, firstName, lastName string) (*User, error) {
	if id <= 0 || phone == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:          id,
		PhoneNumber: phone,
		FirstName:   firstName,
		LastName:    lastName,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Linked reports whether the user can receive Telegram messages at all.
func (u *User) Linked() bool { return u != nil && u.TelegramID != nil }

// Reachable is the dispatch-side predicate: linked and not deactivated.
func (u *User) Reachable() bool { return u.Linked() && u.IsActive }

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
