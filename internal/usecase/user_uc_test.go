package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"+7 (999) 000-11-22", "+79990001122"},
		{"79990001122", "+79990001122"},
		{"89990001122", "+79990001122"},
		{"+79990001122", "+79990001122"},
		{"8 999 000 11 22", "+79990001122"},
		{"", ""},
		{"abc", ""},
	}
	for _, tc := range cases {
		if got := normalizePhone(tc.in); got != tc.want {
			t.Errorf("normalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUserUseCase_LinkPhone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	users.put(&model.User{ID: 1, PhoneNumber: "+79990001122", FirstName: "Анна", IsActive: true})

	uc := NewUserUseCase(users, fakeTxManager{}, newTestLogger())

	t.Run("binds registered phone", func(t *testing.T) {
		u, err := uc.LinkPhone(ctx, "8 (999) 000-11-22", 555)
		if err != nil {
			t.Fatalf("LinkPhone: %v", err)
		}
		if u.TelegramID == nil || *u.TelegramID != 555 {
			t.Fatalf("telegram id not bound: %+v", u)
		}
	})

	t.Run("idempotent for same chat", func(t *testing.T) {
		u, err := uc.LinkPhone(ctx, "+79990001122", 555)
		if err != nil {
			t.Fatalf("repeat LinkPhone: %v", err)
		}
		if u.TelegramID == nil || *u.TelegramID != 555 {
			t.Fatalf("binding lost on repeat: %+v", u)
		}
	})

	t.Run("unregistered phone", func(t *testing.T) {
		_, err := uc.LinkPhone(ctx, "+70000000000", 556)
		if !errors.Is(err, domain.ErrPhoneNotRegistered) {
			t.Fatalf("expected ErrPhoneNotRegistered, got %v", err)
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		if _, err := uc.LinkPhone(ctx, "", 555); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("empty phone: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := uc.LinkPhone(ctx, "+79990001122", 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("zero chat id: expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestUserUseCase_GetByTelegramID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	users.put(&model.User{ID: 1, PhoneNumber: "+79990001122", TelegramID: ptrInt64(555), IsActive: true})

	uc := NewUserUseCase(users, fakeTxManager{}, newTestLogger())

	u, err := uc.GetByTelegramID(ctx, 555)
	if err != nil {
		t.Fatalf("GetByTelegramID: %v", err)
	}
	if u.ID != 1 {
		t.Fatalf("wrong user: %+v", u)
	}

	if _, err := uc.GetByTelegramID(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
