package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/domain"
	"github.com/spec-kit/gallery-service/internal/observability"
	"github.com/spec-kit/gallery-service/internal/repository"
	apperrors "github.com/spec-kit/gallery-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated administrator for a request.
type Principal struct {
	User *domain.AdminUser
}

// SessionMiddleware resolves the admin identity from session cookies and
// transparently renews an expired access token from a still-valid refresh
// token before the handler runs. It never rejects by itself; RequireAdmin
// guards protected routes.
type SessionMiddleware struct {
	sessions *SessionManager
	users    repository.UserRepository
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewSessionMiddleware constructs the middleware.
func NewSessionMiddleware(sessions *SessionManager, users repository.UserRepository, logger *zap.Logger, metrics *observability.Metrics) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, users: users, logger: logger, metrics: metrics}
}

// Handle loads the principal for downstream handlers when a valid session
// exists. Every denial cause (absent, malformed, tampered, expired, wrong
// type) leaves the request anonymous; the cause is logged and counted but
// never changes the authorization outcome.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	authUser, err := m.sessions.CurrentUser(c)
	if err != nil {
		if !errors.Is(err, ErrNoCookie) {
			m.logger.Debug("access token rejected", zap.String("cause", err.Error()))
			m.metrics.RecordAuthDenial("admin", err.Error())
		}
		authUser, err = m.sessions.RenewAccess(c)
		if err != nil {
			if !errors.Is(err, ErrNoCookie) {
				m.logger.Debug("refresh token rejected", zap.String("cause", err.Error()))
				m.metrics.RecordAuthDenial("admin", err.Error())
			}
			return c.Next()
		}
	}

	user, err := m.users.GetByID(c.Context(), authUser.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Token for a deleted account; treat as anonymous.
			return c.Next()
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

// RequireAdmin rejects requests without an authenticated administrator.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated administrator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
