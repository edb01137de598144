package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/config"
	"github.com/spec-kit/gallery-service/internal/domain"
	"github.com/spec-kit/gallery-service/internal/events"
	"github.com/spec-kit/gallery-service/internal/repository"
)

type fakeUserRepo struct {
	users  map[string]*domain.AdminUser
	nextID int
	// when set, every call fails with this error (store outage)
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.AdminUser{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.AdminUser) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.AdminUser, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if r.failWith != nil {
		return r.failWith
	}
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) HasAnyAdmin(_ context.Context) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	return len(r.users) > 0, nil
}

type fakeResetRepo struct {
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.nextID++
	token.ID = "reset-" + strconv.Itoa(r.nextID)
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return token, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "unit-test-secret-at-least-32-chars!!",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  168,
		PBKDF2Iterations:      1000,
		ResetTokenTTLMinutes:  30,
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, *fakeResetRepo, *recordingDispatcher) {
	t.Helper()
	users := newFakeUserRepo()
	resets := newFakeResetRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: resets,
		Dispatcher:        dispatcher,
		LoginLimiter:      NewAttemptLimiter(nil, zap.NewNop(), "login", 10, time.Minute),
		Logger:            zap.NewNop(),
	})
	return svc, users, resets, dispatcher
}

func seedAdmin(t *testing.T, users *fakeUserRepo, email, password string) *domain.AdminUser {
	t.Helper()
	hash := ""
	if password != "" {
		var err error
		hash, err = auth.HashPassword(password, 1000)
		require.NoError(t, err)
	}
	user := &domain.AdminUser{Name: "Admin", Email: email, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestBootstrapCreatesFirstAdmin(t *testing.T) {
	svc, users, _, dispatcher := newAuthFixture(t)
	ctx := context.Background()

	user, err := svc.Bootstrap(ctx, "Admin", "admin@example.com", "s3cret-password")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.True(t, auth.VerifyPassword("s3cret-password", user.PasswordHash))
	require.Len(t, dispatcher.byType(events.EventAdminBootstrapped), 1)

	// A second bootstrap is refused once any admin exists.
	_, err = svc.Bootstrap(ctx, "Mallory", "mallory@example.com", "whatever-pass")
	require.ErrorIs(t, err, ErrAdminExists)
	has, err := users.HasAnyAdmin(ctx)
	require.NoError(t, err)
	require.True(t, has)
	require.Len(t, users.users, 1)
}

func TestLoginSuccess(t *testing.T) {
	svc, users, _, dispatcher := newAuthFixture(t)
	seeded := seedAdmin(t, users, "admin@example.com", "s3cret-password")

	user, err := svc.Login(context.Background(), "admin@example.com", "s3cret-password", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, user.ID)
	require.Len(t, dispatcher.byType(events.EventAdminLoggedIn), 1)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	seedAdmin(t, users, "admin@example.com", "s3cret-password")

	// Unknown email and wrong password yield the identical error value, so
	// the response cannot be used for user enumeration.
	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "s3cret-password", "10.0.0.1")
	_, wrongErr := svc.Login(context.Background(), "admin@example.com", "not-the-password", "10.0.0.1")
	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr, wrongErr)
}

func TestLoginStoreFailureStaysUniform(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	users.failWith = context.DeadlineExceeded

	_, err := svc.Login(context.Background(), "admin@example.com", "s3cret-password", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPasswordNotSet(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	seedAdmin(t, users, "admin@example.com", "")

	// First-login setup state is a distinct outcome, not an auth failure.
	_, err := svc.Login(context.Background(), "admin@example.com", "anything", "10.0.0.1")
	require.ErrorIs(t, err, ErrPasswordNotSet)
}

func TestSetPassword(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	user := seedAdmin(t, users, "admin@example.com", "")
	ctx := context.Background()

	require.NoError(t, svc.SetPassword(ctx, user.ID, "fresh-password"))
	require.True(t, auth.VerifyPassword("fresh-password", users.users[user.ID].PasswordHash))

	// Once set, the setup path is closed.
	require.ErrorIs(t, svc.SetPassword(ctx, user.ID, "another-password"), ErrPasswordAlreadySet)
}

func TestChangePassword(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	user := seedAdmin(t, users, "admin@example.com", "old-password")
	ctx := context.Background()

	require.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong-password", "new-password"), ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "old-password", "new-password"))
	require.True(t, auth.VerifyPassword("new-password", users.users[user.ID].PasswordHash))
	require.False(t, auth.VerifyPassword("old-password", users.users[user.ID].PasswordHash))
}

func TestPasswordResetFlow(t *testing.T) {
	svc, users, _, _ := newAuthFixture(t)
	user := seedAdmin(t, users, "admin@example.com", "old-password")
	ctx := context.Background()

	// Unknown emails produce no token and no error.
	token, err := svc.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, token)

	token, err = svc.RequestPasswordReset(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, token)
	require.Equal(t, user.ID, token.UserID)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token.Token, "new-password"))
	require.True(t, auth.VerifyPassword("new-password", users.users[user.ID].PasswordHash))

	// One-time use.
	require.ErrorIs(t, svc.ConfirmPasswordReset(ctx, token.Token, "again"), ErrResetTokenInvalid)
}

func TestConfirmPasswordResetExpiredToken(t *testing.T) {
	svc, users, resets, _ := newAuthFixture(t)
	user := seedAdmin(t, users, "admin@example.com", "old-password")
	ctx := context.Background()

	expired := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, resets.Create(ctx, expired))

	require.ErrorIs(t, svc.ConfirmPasswordReset(ctx, "expired-token", "new-password"), ErrResetTokenInvalid)
	require.ErrorIs(t, svc.ConfirmPasswordReset(ctx, "no-such-token", "new-password"), ErrResetTokenInvalid)
}
