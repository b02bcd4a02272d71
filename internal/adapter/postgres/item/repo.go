// Package item implements the content item repository using PostgreSQL.
// It owns the single contended resource of the workflow: the claim pair on
// content_items. Claiming is a conditional UPDATE that only succeeds while
// the claim column is still NULL, so two racing reviewers can never both
// win. Static queries are raw SQL constants; queue reads over a dynamic
// stage set are built with squirrel.
package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/medwave/review-backend/internal/adapter/postgres"
	"github.com/medwave/review-backend/internal/domain"
)

// Repo provides content item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new content item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const itemColumns = `id, topic_id, kind, title, stage, version, storage_key,
assigned_reviewer_id, assigned_at, locked_by_id, locked_at,
published_by_id, published_at, deep_link, created_at, updated_at`

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const getByIDSQL = `
SELECT ` + itemColumns + `
FROM content_items
WHERE id = $1`

const holderSQL = `
SELECT u.id, u.name
FROM content_items ci
JOIN users u ON u.id = ci.assigned_reviewer_id
WHERE ci.id = $1`

const setStageSQL = `
UPDATE content_items
SET stage = $2,
    assigned_reviewer_id = NULL,
    assigned_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING ` + itemColumns

// tryClaimSQL is the compare-and-swap at the center of the claim subsystem.
// The WHERE clause re-checks the claim column AND the stage at write time:
// a concurrent claimer or a concurrent stage move both make this affect
// zero rows for the loser. The stage predicate keeps the stage/role check
// done against the earlier read valid at the moment the claim lands.
const tryClaimSQL = `
UPDATE content_items
SET assigned_reviewer_id = $2,
    assigned_at = $4,
    updated_at = now()
WHERE id = $1 AND assigned_reviewer_id IS NULL AND stage = $3
RETURNING ` + itemColumns

const releaseClaimSQL = `
UPDATE content_items
SET assigned_reviewer_id = NULL,
    assigned_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING ` + itemColumns

const lockSQL = `
UPDATE content_items
SET stage = $2,
    locked_by_id = $3,
    locked_at = $4,
    assigned_reviewer_id = NULL,
    assigned_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING ` + itemColumns

const unlockSQL = `
UPDATE content_items
SET stage = $2,
    locked_by_id = NULL,
    locked_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING ` + itemColumns

const markPublishedSQL = `
UPDATE content_items
SET stage = $2,
    published_by_id = $3,
    published_at = $4,
    deep_link = $5,
    locked_by_id = NULL,
    locked_at = NULL,
    assigned_reviewer_id = NULL,
    assigned_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING ` + itemColumns

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a content item by ID.
// Returns domain.ErrNotFound if the item does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, getByIDSQL, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, "content_item", id)
	}

	return item, nil
}

// Holder returns the id and display name of the reviewer currently holding
// the item. Returns domain.ErrNotFound when the item is unclaimed or absent.
func (r *Repo) Holder(ctx context.Context, itemID uuid.UUID) (uuid.UUID, string, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var holderID uuid.UUID
	var name string
	if err := querier.QueryRow(ctx, holderSQL, itemID).Scan(&holderID, &name); err != nil {
		return uuid.Nil, "", mapError(err, "content_item", itemID)
	}

	return holderID, name, nil
}

// ListUnclaimed returns unclaimed items of the given kind at any of the
// given stages, oldest-created first (FIFO), at most limit rows (0 = no
// limit). An empty stage set yields an empty list.
func (r *Repo) ListUnclaimed(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, limit int) ([]*domain.ContentItem, error) {
	if len(stages) == 0 {
		return []*domain.ContentItem{}, nil
	}

	builder := psql.
		Select(itemColumns).
		From("content_items").
		Where(squirrel.Eq{"kind": string(kind), "stage": stageStrings(stages)}).
		Where("assigned_reviewer_id IS NULL").
		OrderBy("created_at ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unclaimed query: %w", err)
	}

	return r.list(ctx, query, args)
}

// ListClaimedBy returns items of the given kind at any of the given stages
// claimed by the reviewer, most recently claimed first, at most limit rows
// (0 = no limit).
func (r *Repo) ListClaimedBy(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, reviewerID uuid.UUID, limit int) ([]*domain.ContentItem, error) {
	if len(stages) == 0 {
		return []*domain.ContentItem{}, nil
	}

	builder := psql.
		Select(itemColumns).
		From("content_items").
		Where(squirrel.Eq{
			"kind":                 string(kind),
			"stage":                stageStrings(stages),
			"assigned_reviewer_id": reviewerID,
		}).
		OrderBy("assigned_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build claimed query: %w", err)
	}

	return r.list(ctx, query, args)
}

func (r *Repo) list(ctx context.Context, query string, args []any) ([]*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content_items: %w", err)
	}
	defer rows.Close()

	items := []*domain.ContentItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content_item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content_items: %w", err)
	}

	return items, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// SetStage moves the item to the given stage and unconditionally clears the
// claim pair — every stage change returns the item to the unclaimed pool.
// Returns the updated item.
func (r *Repo) SetStage(ctx context.Context, id uuid.UUID, stage domain.Stage) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, setStageSQL, id, string(stage))
	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, "content_item", id)
	}

	return item, nil
}

// TryClaim atomically assigns the item to the reviewer if and only if the
// claim column is still NULL and the item is still at the given stage at
// write time. Returns (nil, nil) when the conditional update matched no
// row — the item is gone, somebody else holds it, or it moved off the
// stage the caller observed; the caller disambiguates.
func (r *Repo) TryClaim(ctx context.Context, itemID, reviewerID uuid.UUID, stage domain.Stage, at time.Time) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, tryClaimSQL, itemID, reviewerID, string(stage), at)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "content_item", itemID)
	}

	return item, nil
}

// ReleaseClaim clears the claim pair. Holder checks belong to the caller.
func (r *Repo) ReleaseClaim(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, releaseClaimSQL, itemID)
	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, "content_item", itemID)
	}

	return item, nil
}

// Lock moves the item to LOCKED and stamps the lock pair.
func (r *Repo) Lock(ctx context.Context, itemID, lockedByID uuid.UUID, at time.Time) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, lockSQL, itemID, string(domain.StageLocked), lockedByID, at)
	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, "content_item", itemID)
	}

	return item, nil
}

// Unlock reverts the item to APPROVED and clears the lock pair.
func (r *Repo) Unlock(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, unlockSQL, itemID, string(domain.StageApproved))
	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, "content_item", itemID)
	}

	return item, nil
}

// MarkPublished moves the item to PUBLISHED, stamps the publish trio, and
// clears the lock and claim pairs.
func (r *Repo) MarkPublished(ctx context.Context, itemID, publishedByID uuid.UUID, at time.Time, deepLink string) (*domain.ContentItem, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	row := querier.QueryRow(ctx, markPublishedSQL, itemID, string(domain.StagePublished), publishedByID, at, deepLink)
	item, err := scanItem(row)
	if err != nil {
		return nil, mapError(err, "content_item", itemID)
	}

	return item, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func stageStrings(stages []domain.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

// scanItem scans one content_items row (itemColumns order) into a domain item.
func scanItem(row pgx.Row) (*domain.ContentItem, error) {
	var (
		item       domain.ContentItem
		kind       string
		stage      string
		storageKey pgtype.Text
		assignedID pgtype.UUID
		assignedAt pgtype.Timestamptz
		lockedByID pgtype.UUID
		lockedAt   pgtype.Timestamptz
		pubByID    pgtype.UUID
		pubAt      pgtype.Timestamptz
		deepLink   pgtype.Text
	)

	err := row.Scan(
		&item.ID, &item.TopicID, &kind, &item.Title, &stage, &item.Version, &storageKey,
		&assignedID, &assignedAt, &lockedByID, &lockedAt,
		&pubByID, &pubAt, &deepLink, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Kind = domain.ContentKind(kind)
	item.Stage = domain.Stage(stage)
	item.StorageKey = textPtr(storageKey)
	item.AssignedReviewerID = uuidPtr(assignedID)
	item.AssignedAt = timePtr(assignedAt)
	item.LockedByID = uuidPtr(lockedByID)
	item.LockedAt = timePtr(lockedAt)
	item.PublishedByID = uuidPtr(pubByID)
	item.PublishedAt = timePtr(pubAt)
	item.DeepLink = textPtr(deepLink)

	return &item, nil
}

func uuidPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func timePtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func textPtr(v pgtype.Text) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

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
