package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
)

func TestRetentionUseCase_PurgeOldSent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newMemUserRepo()
	repo := newMemNotificationRepo(users)
	seedUser(users, 1, ptrInt64(111), true)

	now := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

	// Sent 40 days ago: past retention.
	oldSent := seedNotification(t, repo, 1, model.KindNewMatch, nil, now.AddDate(0, 0, -41))
	if _, err := repo.MarkSent(ctx, nil, oldSent, now.AddDate(0, 0, -40)); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	// Sent yesterday: inside retention.
	freshSent := seedNotification(t, repo, 1, model.KindNewMatch, nil, now.AddDate(0, 0, -2))
	if _, err := repo.MarkSent(ctx, nil, freshSent, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	// Old but never sent: retention must not touch it.
	oldPending := seedNotification(t, repo, 1, model.KindNewMatch, nil, now.AddDate(0, 0, -90))

	uc := NewRetentionUseCase(repo, 30, newTestLogger())
	uc.now = func() time.Time { return now }

	purged, err := uc.PurgeOldSent(ctx)
	if err != nil {
		t.Fatalf("PurgeOldSent: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged row, got %d", purged)
	}
	if repo.get(oldSent) != nil {
		t.Fatalf("expired sent row should be gone")
	}
	if repo.get(freshSent) == nil {
		t.Fatalf("recently sent row must survive")
	}
	if repo.get(oldPending) == nil {
		t.Fatalf("pending row must survive regardless of age")
	}

	// Idempotent: nothing left in the window.
	purged, err = uc.PurgeOldSent(ctx)
	if err != nil {
		t.Fatalf("second PurgeOldSent: %v", err)
	}
	if purged != 0 {
		t.Fatalf("second purge should find nothing, got %d", purged)
	}
}
