package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medwave/review-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with the given workflow role.
// Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool, role domain.Role) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:        uuid.New(),
		Email:     "reviewer-" + suffix + "@example.com",
		Name:      "Reviewer " + suffix,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, name, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, string(user.Role), user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert: %v", err)
	}

	return user
}

// SeedTopic creates a topic with the given status.
func SeedTopic(t *testing.T, pool *pgxpool.Pool, status domain.TopicStatus) domain.Topic {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	topic := domain.Topic{
		ID:        uuid.New(),
		Name:      "Topic " + suffix,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO topics (id, name, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		topic.ID, topic.Name, string(topic.Status), topic.CreatedAt, topic.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTopic insert: %v", err)
	}

	return topic
}

// SeedItem creates a content item at the given stage, unclaimed.
func SeedItem(t *testing.T, pool *pgxpool.Pool, topicID uuid.UUID, kind domain.ContentKind, stage domain.Stage) domain.ContentItem {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	item := domain.ContentItem{
		ID:        uuid.New(),
		TopicID:   topicID,
		Kind:      kind,
		Title:     "Item " + suffix,
		Stage:     stage,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO content_items (id, topic_id, kind, title, stage, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.TopicID, string(item.Kind), item.Title, string(item.Stage), item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedItem insert: %v", err)
	}

	return item
}

// ClaimItem marks an item as claimed by the given reviewer, bypassing the
// repository so repo tests can arrange pre-claimed state directly.
func ClaimItem(t *testing.T, pool *pgxpool.Pool, itemID, reviewerID uuid.UUID) time.Time {
	t.Helper()
	ctx := context.Background()

	claimedAt := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := pool.Exec(ctx,
		`UPDATE content_items SET assigned_reviewer_id = $2, assigned_at = $3 WHERE id = $1`,
		itemID, reviewerID, claimedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: ClaimItem update: %v", err)
	}
	if tag.RowsAffected() != 1 {
		t.Fatalf("testhelper: ClaimItem affected %d rows", tag.RowsAffected())
	}

	return claimedAt
}
