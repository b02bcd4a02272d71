// Package topic implements the topic repository using PostgreSQL.
// The workflow engine only advances a topic's coarse status; topic CRUD
// lives upstream.
package topic

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

// Repo provides topic persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new topic repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const getByIDSQL = `
SELECT id, name, status, created_at, updated_at
FROM topics
WHERE id = $1`

const setStatusSQL = `
UPDATE topics
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, name, status, created_at, updated_at`

// advanceSQL only moves a topic forward from an expected status, so
// concurrent transitions can re-run it without clobbering progress.
const advanceSQL = `
UPDATE topics
SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2`

// GetByID returns a topic by ID.
// Returns domain.ErrNotFound if the topic does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)
	topic, err := scanTopic(row)
	if err != nil {
		return nil, mapError(err, "topic", id)
	}

	return topic, nil
}

// SetStatus unconditionally sets the topic's status.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, status domain.TopicStatus) (*domain.Topic, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, setStatusSQL, id, string(status))
	topic, err := scanTopic(row)
	if err != nil {
		return nil, mapError(err, "topic", id)
	}

	return topic, nil
}

// Advance moves the topic from `from` to `to` if it is still at `from`.
// Returns false without error when the topic was already past `from`.
func (r *Repo) Advance(ctx context.Context, id uuid.UUID, from, to domain.TopicStatus) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, advanceSQL, id, string(from), string(to))
	if err != nil {
		return false, mapError(err, "topic", id)
	}

	return tag.RowsAffected() == 1, nil
}

func scanTopic(row pgx.Row) (*domain.Topic, error) {
	var (
		topic  domain.Topic
		status string
	)

	if err := row.Scan(&topic.ID, &topic.Name, &status, &topic.CreatedAt, &topic.UpdatedAt); err != nil {
		return nil, err
	}

	topic.Status = domain.TopicStatus(status)
	return &topic, nil
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
