// Package analytics implements the video analytics repository using PostgreSQL.
// A zero-counter row is inserted when a video is published; ingestion of real
// counters happens through a separate pipeline.
package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/medwave/review-backend/internal/adapter/postgres"
	"github.com/medwave/review-backend/internal/domain"
)

// Repo provides video analytics persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// EnsureRow is idempotent so a publish retry never resets counters that
// ingestion already wrote.
const ensureRowSQL = `
INSERT INTO video_analytics (video_id)
VALUES ($1)
ON CONFLICT (video_id) DO NOTHING`

const getByVideoIDSQL = `
SELECT video_id, views, likes, shares, watch_ms, created_at, updated_at
FROM video_analytics
WHERE video_id = $1`

// EnsureRow creates a zero-counter analytics row for the video if none exists.
func (r *Repo) EnsureRow(ctx context.Context, videoID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, ensureRowSQL, videoID); err != nil {
		return mapError(err, "video analytics", videoID)
	}

	return nil
}

// GetByVideoID returns the analytics row for a video.
// Returns domain.ErrNotFound if the video has no analytics row.
func (r *Repo) GetByVideoID(ctx context.Context, videoID uuid.UUID) (*domain.VideoAnalytics, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var stats domain.VideoAnalytics
	err := querier.QueryRow(ctx, getByVideoIDSQL, videoID).Scan(
		&stats.VideoID,
		&stats.Views,
		&stats.Likes,
		&stats.Shares,
		&stats.WatchMs,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "video analytics", videoID)
	}

	return &stats, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
