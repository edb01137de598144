package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/domain"
	"github.com/spec-kit/gallery-service/internal/events"
	"github.com/spec-kit/gallery-service/internal/repository"
)

var (
	ErrAlbumNotFound   = errors.New("album not found")
	ErrAlbumExpired    = errors.New("album link expired")
	ErrInvalidPassword = errors.New("invalid password")
)

// AlbumService verifies album passwords before the session layer mints an
// access grant. It performs the password comparison; the grant itself comes
// from the AlbumSessionManager in the handler.
type AlbumService struct {
	albums     repository.AlbumRepository
	dispatcher events.Dispatcher
	limiter    *AttemptLimiter
	logger     *zap.Logger
}

// NewAlbumService builds the service.
func NewAlbumService(albums repository.AlbumRepository, dispatcher events.Dispatcher, limiter *AttemptLimiter, logger *zap.Logger) *AlbumService {
	return &AlbumService{albums: albums, dispatcher: dispatcher, limiter: limiter, logger: logger}
}

// Unlock checks the guest-supplied password for the album identified by
// slug. Unprotected albums unlock without a password. clientKey scopes
// attempt throttling per guest and album.
func (s *AlbumService) Unlock(ctx context.Context, slug, password, clientKey string) (*domain.Album, error) {
	if !s.limiter.Allow(ctx, clientKey+":"+slug) {
		return nil, ErrTooManyAttempts
	}

	album, err := s.albums.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}

	if album.LinkExpired(time.Now()) {
		return nil, ErrAlbumExpired
	}

	if album.Protected() && !auth.VerifyPassword(password, album.PasswordHash) {
		s.publish(ctx, events.EventAlbumUnlockFailed, events.AlbumEventPayload{
			AlbumSlug: slug,
			Cause:     "wrong password",
		})
		return nil, ErrInvalidPassword
	}

	s.limiter.Reset(ctx, clientKey+":"+slug)
	s.publish(ctx, events.EventAlbumUnlocked, events.AlbumEventPayload{
		AlbumID:   album.ID,
		AlbumSlug: album.Slug,
	})
	return album, nil
}

// Lookup resolves an album by slug for access checks.
func (s *AlbumService) Lookup(ctx context.Context, slug string) (*domain.Album, error) {
	album, err := s.albums.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, err
	}
	return album, nil
}

func (s *AlbumService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
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
