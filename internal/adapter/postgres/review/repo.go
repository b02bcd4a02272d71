// Package review implements the review decision record repository using
// PostgreSQL. Records are immutable once created: there is no update or
// delete path, only inserts and reads.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/medwave/review-backend/internal/adapter/postgres"
	"github.com/medwave/review-backend/internal/domain"
)

// Repo provides review record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new review record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const createSQL = `
INSERT INTO review_records (id, item_id, kind, reviewer_id, reviewer_role, decision, comments, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, item_id, kind, reviewer_id, reviewer_role, decision, comments, created_at`

const getByItemIDSQL = `
SELECT id, item_id, kind, reviewer_id, reviewer_role, decision, comments, created_at
FROM review_records
WHERE item_id = $1
ORDER BY created_at DESC`

// Create inserts a new review record and returns the persisted row.
func (r *Repo) Create(ctx context.Context, rec *domain.ReviewRecord) (*domain.ReviewRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var comments pgtype.Text
	if rec.Comments != nil {
		comments = pgtype.Text{String: *rec.Comments, Valid: true}
	}

	row := querier.QueryRow(ctx, createSQL,
		rec.ID, rec.ItemID, string(rec.Kind), rec.ReviewerID,
		string(rec.ReviewerRole), string(rec.Decision), comments, rec.CreatedAt,
	)

	created, err := scanRecord(row)
	if err != nil {
		return nil, mapError(err, "review_record", rec.ID)
	}

	return created, nil
}

// GetByItemID returns all review records for an item, newest first.
func (r *Repo) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewRecord, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, getByItemIDSQL, itemID)
	if err != nil {
		return nil, fmt.Errorf("get review_records by item_id: %w", err)
	}
	defer rows.Close()

	records := []*domain.ReviewRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review_record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review_records: %w", err)
	}

	return records, nil
}

func scanRecord(row pgx.Row) (*domain.ReviewRecord, error) {
	var (
		rec      domain.ReviewRecord
		kind     string
		role     string
		decision string
		comments pgtype.Text
	)

	err := row.Scan(&rec.ID, &rec.ItemID, &kind, &rec.ReviewerID, &role, &decision, &comments, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.Kind = domain.ContentKind(kind)
	rec.ReviewerRole = domain.Role(role)
	rec.Decision = domain.ReviewDecision(decision)
	if comments.Valid {
		c := comments.String
		rec.Comments = &c
	}

	return &rec, nil
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
