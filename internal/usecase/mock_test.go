package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/model"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func ptrInt64(v int64) *int64 { return &v }

// =============================
// In-memory repositories
// =============================

// ---- Users ----

type memUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User // keyed by platform user ID
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]*model.User{}}
}

func (r *memUserRepo) put(u *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *memUserRepo) FindByID(_ context.Context, _ repository.Tx, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByPhone(_ context.Context, _ repository.Tx, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) FindByTelegramID(_ context.Context, _ repository.Tx, tgID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID != nil && *u.TelegramID == tgID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) BindTelegramID(_ context.Context, _ repository.Tx, phone string, tgID int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.TelegramID != nil && *u.TelegramID == tgID && u.PhoneNumber != phone {
			u.TelegramID = nil
		}
	}
	for _, u := range r.users {
		if u.PhoneNumber == phone {
			id := tgID
			u.TelegramID = &id
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) CountLinked(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.TelegramID != nil && u.IsActive {
			n++
		}
	}
	return n, nil
}

// ---- Notifications ----

type memNotificationRepo struct {
	mu    sync.Mutex
	rows  map[string]*model.Notification
	users *memUserRepo // recipient state for the FetchDue join
}

var _ repository.NotificationRepository = (*memNotificationRepo)(nil)

func newMemNotificationRepo(users *memUserRepo) *memNotificationRepo {
	return &memNotificationRepo{rows: map[string]*model.Notification{}, users: users}
}

func (r *memNotificationRepo) Save(_ context.Context, _ repository.Tx, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[n.ID]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *n
	r.rows[n.ID] = &cp
	return nil
}

func (r *memNotificationRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.rows[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memNotificationRepo) FetchDue(_ context.Context, _ repository.Tx, now time.Time, limit int) ([]*repository.DueNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*repository.DueNotification
	for _, n := range r.rows {
		if !n.Due(now) {
			continue
		}
		item := &repository.DueNotification{Notification: *n}
		if u, ok := r.users.users[n.UserID]; ok {
			item.RecipientTelegramID = u.TelegramID
			item.RecipientActive = u.IsActive
		}
		due = append(due, item)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedAt.Before(due[j].CreatedAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *memNotificationRepo) MarkSent(_ context.Context, _ repository.Tx, id string, sentAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok || n.IsSent {
		return false, nil
	}
	at := sentAt
	n.IsSent = true
	n.SentAt = &at
	return true, nil
}

func (r *memNotificationRepo) PurgeSentBefore(_ context.Context, _ repository.Tx, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	purged := 0
	for id, n := range r.rows {
		if n.IsSent && n.SentAt != nil && !n.SentAt.After(cutoff) {
			delete(r.rows, id)
			purged++
		}
	}
	return purged, nil
}

func (r *memNotificationRepo) CountPending(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if !row.IsSent {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) CountSent(_ context.Context, _ repository.Tx) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, row := range r.rows {
		if row.IsSent {
			n++
		}
	}
	return n, nil
}

func (r *memNotificationRepo) get(id string) *model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.rows[id]; ok {
		cp := *n
		return &cp
	}
	return nil
}

// ---- Transaction manager ----

// fakeTxManager runs the callback inline; the mem repos ignore tx anyway.
type fakeTxManager struct{}

var _ repository.TransactionManager = (*fakeTxManager)(nil)

func (fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- Mock DeliveryChannel ----

type sentMessage struct {
	TelegramID int64
	Text       string
	Actions    []adapter.Action
}

type MockChannel struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendFunc func(ctx context.Context, telegramID int64, text string, actions []adapter.Action) adapter.Outcome
}

var _ adapter.DeliveryChannel = (*MockChannel)(nil)

func (m *MockChannel) Send(ctx context.Context, telegramID int64, text string, actions []adapter.Action) adapter.Outcome {
	m.mu.Lock()
	m.Sent = append(m.Sent, sentMessage{TelegramID: telegramID, Text: text, Actions: actions})
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, telegramID, text, actions)
	}
	return adapter.Delivered
}

func (m *MockChannel) calls() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// ---- Mock PlatformAPI ----

type MockPlatform struct {
	UserTeamsFunc         func(ctx context.Context, userID int64) ([]model.Team, error)
	UserChampionshipsFunc func(ctx context.Context, userID int64) ([]model.Championship, error)
	UserMatchesFunc       func(ctx context.Context, userID int64, status string) ([]model.Match, error)
	UserInvitationsFunc   func(ctx context.Context, userID int64) ([]model.Invitation, error)
	UpcomingMatchesFunc   func(ctx context.Context, days int) ([]model.Match, error)
	TeamRosterFunc        func(ctx context.Context, teamID int64) (*model.Roster, error)
	RecommendedFunc       func(ctx context.Context, userID int64) ([]model.ChampionshipDetails, error)
	ChampionshipFunc      func(ctx context.Context, championshipID int64) (*model.ChampionshipDetails, error)
	TeamDetailsFunc       func(ctx context.Context, teamID int64) (*model.TeamDetails, error)
	AcceptFunc            func(ctx context.Context, kind model.InvitationKind, invitationID int64) error
	DeclineFunc           func(ctx context.Context, kind model.InvitationKind, invitationID int64) error
	DeclineMatchFunc      func(ctx context.Context, matchID, teamID int64, reason string) error
}

var _ adapter.PlatformAPI = (*MockPlatform)(nil)

func (m *MockPlatform) UserTeams(ctx context.Context, userID int64) ([]model.Team, error) {
	if m.UserTeamsFunc != nil {
		return m.UserTeamsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockPlatform) UserChampionships(ctx context.Context, userID int64) ([]model.Championship, error) {
	if m.UserChampionshipsFunc != nil {
		return m.UserChampionshipsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockPlatform) UserMatches(ctx context.Context, userID int64, status string) ([]model.Match, error) {
	if m.UserMatchesFunc != nil {
		return m.UserMatchesFunc(ctx, userID, status)
	}
	return nil, nil
}

func (m *MockPlatform) UserInvitations(ctx context.Context, userID int64) ([]model.Invitation, error) {
	if m.UserInvitationsFunc != nil {
		return m.UserInvitationsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockPlatform) UpcomingMatches(ctx context.Context, days int) ([]model.Match, error) {
	if m.UpcomingMatchesFunc != nil {
		return m.UpcomingMatchesFunc(ctx, days)
	}
	return nil, nil
}

func (m *MockPlatform) TeamRoster(ctx context.Context, teamID int64) (*model.Roster, error) {
	if m.TeamRosterFunc != nil {
		return m.TeamRosterFunc(ctx, teamID)
	}
	return &model.Roster{TeamID: teamID}, nil
}

func (m *MockPlatform) RecommendedChampionships(ctx context.Context, userID int64) ([]model.ChampionshipDetails, error) {
	if m.RecommendedFunc != nil {
		return m.RecommendedFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockPlatform) ChampionshipDetails(ctx context.Context, championshipID int64) (*model.ChampionshipDetails, error) {
	if m.ChampionshipFunc != nil {
		return m.ChampionshipFunc(ctx, championshipID)
	}
	return &model.ChampionshipDetails{ID: championshipID}, nil
}

func (m *MockPlatform) TeamDetails(ctx context.Context, teamID int64) (*model.TeamDetails, error) {
	if m.TeamDetailsFunc != nil {
		return m.TeamDetailsFunc(ctx, teamID)
	}
	return &model.TeamDetails{ID: teamID}, nil
}

func (m *MockPlatform) AcceptInvitation(ctx context.Context, kind model.InvitationKind, invitationID int64) error {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(ctx, kind, invitationID)
	}
	return nil
}

func (m *MockPlatform) DeclineInvitation(ctx context.Context, kind model.InvitationKind, invitationID int64) error {
	if m.DeclineFunc != nil {
		return m.DeclineFunc(ctx, kind, invitationID)
	}
	return nil
}

func (m *MockPlatform) DeclineMatch(ctx context.Context, matchID, teamID int64, reason string) error {
	if m.DeclineMatchFunc != nil {
		return m.DeclineMatchFunc(ctx, matchID, teamID, reason)
	}
	return nil
}
