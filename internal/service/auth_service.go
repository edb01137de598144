package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/config"
	"github.com/spec-kit/gallery-service/internal/domain"
	"github.com/spec-kit/gallery-service/internal/events"
	"github.com/spec-kit/gallery-service/internal/repository"
)

// Login failures collapse into ErrInvalidCredentials regardless of cause
// (unknown email, wrong password, store failure) to prevent user
// enumeration. ErrPasswordNotSet is the one deliberate exception: it is a
// business state (first-login setup), not an authentication failure.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordNotSet     = errors.New("password not set")
	ErrPasswordAlreadySet = errors.New("password already set")
	ErrAdminExists        = errors.New("an administrator already exists")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrResetTokenInvalid  = errors.New("reset token invalid, expired or used")
)

// AuthService coordinates administrator login, bootstrap and password flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	dispatcher events.Dispatcher
	limiter    *AttemptLimiter
	logger     *zap.Logger
	iterations int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	LoginLimiter      *AttemptLimiter
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		dispatcher: deps.Dispatcher,
		limiter:    deps.LoginLimiter,
		logger:     deps.Logger,
		iterations: cfg.PBKDF2Iterations,
		resetTTL:   cfg.ResetTokenTTL(),
	}
}

// Bootstrap explicitly provisions the first administrator. It is refused
// the moment any admin row exists; login never provisions accounts.
func (s *AuthService) Bootstrap(ctx context.Context, name, email, password string) (*domain.AdminUser, error) {
	exists, err := s.users.HasAnyAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}

	hash, err := auth.HashPassword(password, s.iterations)
	if err != nil {
		return nil, err
	}

	user := &domain.AdminUser{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventAdminBootstrapped, events.AdminEventPayload{UserID: user.ID, Email: user.Email})
	return user, nil
}

// Login authenticates an administrator. clientKey scopes attempt throttling
// (typically the remote IP).
func (s *AuthService) Login(ctx context.Context, email, password, clientKey string) (*domain.AdminUser, error) {
	if !s.limiter.Allow(ctx, clientKey) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			// Store failures stay out of the client response but are loud
			// in the logs.
			s.logger.Error("credential store lookup failed", zap.Error(err))
		}
		return nil, s.denyLogin(ctx, email, "lookup failed")
	}

	if user.PasswordHash == "" {
		return nil, ErrPasswordNotSet
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, s.denyLogin(ctx, email, "wrong password")
	}

	s.limiter.Reset(ctx, clientKey)
	s.publish(ctx, events.EventAdminLoggedIn, events.AdminEventPayload{UserID: user.ID, Email: user.Email})
	return user, nil
}

// SetPassword stores the first password for an account that has none yet.
func (s *AuthService) SetPassword(ctx context.Context, userID, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" {
		return ErrPasswordAlreadySet
	}

	hash, err := auth.HashPassword(newPassword, s.iterations)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, events.AdminEventPayload{UserID: user.ID, Email: user.Email})
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return ErrPasswordNotSet
	}
	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.iterations)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordChanged, events.AdminEventPayload{UserID: user.ID, Email: user.Email})
	return nil
}

// RequestPasswordReset persists a one-time reset token for the email. An
// unknown email yields (nil, nil) so the handler can answer uniformly.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return ErrResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword, s.iterations)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, token.UserID, hash); err != nil {
		return err
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return err
	}

	s.publish(ctx, events.EventPasswordReset, events.AdminEventPayload{UserID: token.UserID})
	return nil
}

// NotifySessionRefreshed emits the audit event for an explicit rotation.
func (s *AuthService) NotifySessionRefreshed(ctx context.Context, user *domain.AuthUser) {
	s.publish(ctx, events.EventSessionRefreshed, events.AdminEventPayload{UserID: user.ID, Email: user.Email})
}

// NotifySessionDestroyed emits the audit event for a logout.
func (s *AuthService) NotifySessionDestroyed(ctx context.Context, user *domain.AuthUser) {
	payload := events.AdminEventPayload{}
	if user != nil {
		payload.UserID = user.ID
		payload.Email = user.Email
	}
	s.publish(ctx, events.EventSessionDestroyed, payload)
}

func (s *AuthService) denyLogin(ctx context.Context, email, cause string) error {
	s.publish(ctx, events.EventAdminLoginFailed, events.LoginFailedPayload{Email: email, Cause: cause})
	return ErrInvalidCredentials
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
