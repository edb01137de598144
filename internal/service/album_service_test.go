package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/gallery-service/internal/auth"
	"github.com/spec-kit/gallery-service/internal/domain"
	"github.com/spec-kit/gallery-service/internal/events"
)

type fakeAlbumRepo struct {
	albums map[string]*domain.Album
}

func (r *fakeAlbumRepo) GetByID(_ context.Context, id string) (*domain.Album, error) {
	for _, album := range r.albums {
		if album.ID == id {
			return album, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAlbumRepo) GetBySlug(_ context.Context, slug string) (*domain.Album, error) {
	album, ok := r.albums[slug]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return album, nil
}

func newAlbumFixture(t *testing.T, albums ...*domain.Album) (*AlbumService, *recordingDispatcher) {
	t.Helper()
	repo := &fakeAlbumRepo{albums: map[string]*domain.Album{}}
	for _, album := range albums {
		repo.albums[album.Slug] = album
	}
	dispatcher := &recordingDispatcher{}
	limiter := NewAttemptLimiter(nil, zap.NewNop(), "unlock", 10, time.Minute)
	return NewAlbumService(repo, dispatcher, limiter, zap.NewNop()), dispatcher
}

func protectedAlbum(t *testing.T, slug, password string) *domain.Album {
	t.Helper()
	hash, err := auth.HashPassword(password, 1000)
	require.NoError(t, err)
	return &domain.Album{ID: "album-" + slug, Slug: slug, Title: "Album " + slug, PasswordHash: hash}
}

func TestUnlockWithCorrectPassword(t *testing.T) {
	svc, dispatcher := newAlbumFixture(t, protectedAlbum(t, "summer-2026", "guests-only"))

	album, err := svc.Unlock(context.Background(), "summer-2026", "guests-only", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "summer-2026", album.Slug)
	require.Len(t, dispatcher.byType(events.EventAlbumUnlocked), 1)
}

func TestUnlockWithWrongPassword(t *testing.T) {
	svc, dispatcher := newAlbumFixture(t, protectedAlbum(t, "summer-2026", "guests-only"))

	_, err := svc.Unlock(context.Background(), "summer-2026", "wrong", "10.0.0.1")
	require.ErrorIs(t, err, ErrInvalidPassword)
	require.Len(t, dispatcher.byType(events.EventAlbumUnlockFailed), 1)
}

func TestUnlockUnprotectedAlbum(t *testing.T) {
	open := &domain.Album{ID: "album-open", Slug: "open", Title: "Open"}
	svc, _ := newAlbumFixture(t, open)

	album, err := svc.Unlock(context.Background(), "open", "", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "open", album.Slug)
}

func TestUnlockUnknownAlbum(t *testing.T) {
	svc, _ := newAlbumFixture(t)

	_, err := svc.Unlock(context.Background(), "missing", "whatever", "10.0.0.1")
	require.ErrorIs(t, err, ErrAlbumNotFound)
}

func TestUnlockExpiredLink(t *testing.T) {
	album := protectedAlbum(t, "summer-2026", "guests-only")
	past := time.Now().Add(-time.Hour)
	album.ExpiresAt = &past
	svc, _ := newAlbumFixture(t, album)

	_, err := svc.Unlock(context.Background(), "summer-2026", "guests-only", "10.0.0.1")
	require.ErrorIs(t, err, ErrAlbumExpired)
}

func TestLookup(t *testing.T) {
	svc, _ := newAlbumFixture(t, protectedAlbum(t, "summer-2026", "guests-only"))

	album, err := svc.Lookup(context.Background(), "summer-2026")
	require.NoError(t, err)
	require.Equal(t, "summer-2026", album.Slug)

	_, err = svc.Lookup(context.Background(), "missing")
	require.ErrorIs(t, err, ErrAlbumNotFound)
}
