package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gallery-service/internal/api/dto"
	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/service"
	apperrors "github.com/spec-kit/gallery-service/pkg/util"
)

// AlbumsHandler exposes guest album-access endpoints.
type AlbumsHandler struct {
	albums   *service.AlbumService
	sessions *auth.AlbumSessionManager
}

// NewAlbumsHandler constructs handler.
func NewAlbumsHandler(albumService *service.AlbumService, sessions *auth.AlbumSessionManager) *AlbumsHandler {
	return &AlbumsHandler{albums: albumService, sessions: sessions}
}

// Unlock handles POST /albums/:slug/unlock. A correct password (or an
// unprotected album) yields an album-session cookie scoped to this album.
func (h *AlbumsHandler) Unlock(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return apperrors.NewValidationError("album slug required", nil)
	}

	var req dto.UnlockRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	album, err := h.albums.Unlock(c.Context(), slug, req.Password, c.IP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTooManyAttempts):
			return apperrors.NewTooManyRequests("too many unlock attempts")
		case errors.Is(err, service.ErrAlbumNotFound):
			return apperrors.NewNotFound("album", nil)
		case errors.Is(err, service.ErrAlbumExpired):
			return apperrors.NewGone("album link expired")
		case errors.Is(err, service.ErrInvalidPassword):
			return apperrors.NewUnauthorized("invalid password")
		default:
			return apperrors.MapError(err)
		}
	}

	expiresAt, err := h.sessions.Grant(c, album, 0)
	if err != nil {
		return apperrors.MapError(err)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"album":   dto.AlbumResponse{ID: album.ID, Slug: album.Slug, Title: album.Title},
			"session": dto.AlbumSessionResponse{ExpiresAt: expiresAt},
		},
	})
}

// Access handles GET /albums/:slug/access, reporting whether the request
// carries a valid grant for this album. Grants for other albums do not
// count.
func (h *AlbumsHandler) Access(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return apperrors.NewValidationError("album slug required", nil)
	}

	grant, err := h.sessions.GrantFrom(c)
	if err != nil || grant.AlbumSlug != slug {
		return c.JSON(fiber.Map{
			"data": dto.AccessResponse{Authorized: false},
		})
	}

	return c.JSON(fiber.Map{
		"data": dto.AccessResponse{
			Authorized: true,
			AlbumID:    grant.AlbumID,
			AlbumSlug:  grant.AlbumSlug,
		},
	})
}

// Lock handles POST /albums/:slug/lock, clearing the guest's grant cookie.
func (h *AlbumsHandler) Lock(c *fiber.Ctx) error {
	h.sessions.Revoke(c)
	return c.SendStatus(http.StatusNoContent)
}
