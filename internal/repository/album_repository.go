package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/gallery-service/internal/domain"
)

// AlbumRepository exposes the album fields the session layer needs. Album
// CRUD belongs to the admin panel and is out of scope here.
type AlbumRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Album, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Album, error)
}

type albumRepository struct {
	pool *pgxpool.Pool
}

// NewAlbumRepository returns a Postgres-backed implementation.
func NewAlbumRepository(pool *pgxpool.Pool) AlbumRepository {
	return &albumRepository{pool: pool}
}

func (r *albumRepository) GetByID(ctx context.Context, id string) (*domain.Album, error) {
	const query = `
        SELECT id, slug, title, password_hash, expires_at, created_at, updated_at
        FROM albums WHERE id=$1`
	return r.scanAlbum(ctx, query, id)
}

func (r *albumRepository) GetBySlug(ctx context.Context, slug string) (*domain.Album, error) {
	const query = `
        SELECT id, slug, title, password_hash, expires_at, created_at, updated_at
        FROM albums WHERE slug=$1`
	return r.scanAlbum(ctx, query, slug)
}

func (r *albumRepository) scanAlbum(ctx context.Context, query, arg string) (*domain.Album, error) {
	var album domain.Album
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&album.ID,
		&album.Slug,
		&album.Title,
		&album.PasswordHash,
		&album.ExpiresAt,
		&album.CreatedAt,
		&album.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &album, nil
}
