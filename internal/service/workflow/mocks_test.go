package workflow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/config"
	"github.com/medwave/review-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockItemRepo struct {
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)
	HolderFunc        func(ctx context.Context, itemID uuid.UUID) (uuid.UUID, string, error)
	ListUnclaimedFunc func(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, limit int) ([]*domain.ContentItem, error)
	ListClaimedByFunc func(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, reviewerID uuid.UUID, limit int) ([]*domain.ContentItem, error)
	SetStageFunc      func(ctx context.Context, id uuid.UUID, stage domain.Stage) (*domain.ContentItem, error)
	TryClaimFunc      func(ctx context.Context, itemID, reviewerID uuid.UUID, stage domain.Stage, at time.Time) (*domain.ContentItem, error)
	ReleaseClaimFunc  func(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error)
	LockFunc          func(ctx context.Context, itemID, lockedByID uuid.UUID, at time.Time) (*domain.ContentItem, error)
	UnlockFunc        func(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error)
	MarkPublishedFunc func(ctx context.Context, itemID, publishedByID uuid.UUID, at time.Time, deepLink string) (*domain.ContentItem, error)
}

func (m *mockItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockItemRepo) Holder(ctx context.Context, itemID uuid.UUID) (uuid.UUID, string, error) {
	if m.HolderFunc != nil {
		return m.HolderFunc(ctx, itemID)
	}
	return uuid.Nil, "", domain.ErrNotFound
}

func (m *mockItemRepo) ListUnclaimed(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, limit int) ([]*domain.ContentItem, error) {
	if m.ListUnclaimedFunc != nil {
		return m.ListUnclaimedFunc(ctx, kind, stages, limit)
	}
	return []*domain.ContentItem{}, nil
}

func (m *mockItemRepo) ListClaimedBy(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, reviewerID uuid.UUID, limit int) ([]*domain.ContentItem, error) {
	if m.ListClaimedByFunc != nil {
		return m.ListClaimedByFunc(ctx, kind, stages, reviewerID, limit)
	}
	return []*domain.ContentItem{}, nil
}

func (m *mockItemRepo) SetStage(ctx context.Context, id uuid.UUID, stage domain.Stage) (*domain.ContentItem, error) {
	if m.SetStageFunc != nil {
		return m.SetStageFunc(ctx, id, stage)
	}
	return &domain.ContentItem{ID: id, Stage: stage}, nil
}

func (m *mockItemRepo) TryClaim(ctx context.Context, itemID, reviewerID uuid.UUID, stage domain.Stage, at time.Time) (*domain.ContentItem, error) {
	if m.TryClaimFunc != nil {
		return m.TryClaimFunc(ctx, itemID, reviewerID, stage, at)
	}
	return &domain.ContentItem{ID: itemID, Stage: stage, AssignedReviewerID: &reviewerID, AssignedAt: &at}, nil
}

func (m *mockItemRepo) ReleaseClaim(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error) {
	if m.ReleaseClaimFunc != nil {
		return m.ReleaseClaimFunc(ctx, itemID)
	}
	return &domain.ContentItem{ID: itemID}, nil
}

func (m *mockItemRepo) Lock(ctx context.Context, itemID, lockedByID uuid.UUID, at time.Time) (*domain.ContentItem, error) {
	if m.LockFunc != nil {
		return m.LockFunc(ctx, itemID, lockedByID, at)
	}
	return &domain.ContentItem{ID: itemID, Stage: domain.StageLocked, LockedByID: &lockedByID, LockedAt: &at}, nil
}

func (m *mockItemRepo) Unlock(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error) {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, itemID)
	}
	return &domain.ContentItem{ID: itemID, Stage: domain.StageApproved}, nil
}

func (m *mockItemRepo) MarkPublished(ctx context.Context, itemID, publishedByID uuid.UUID, at time.Time, deepLink string) (*domain.ContentItem, error) {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, itemID, publishedByID, at, deepLink)
	}
	return &domain.ContentItem{ID: itemID, Stage: domain.StagePublished, PublishedByID: &publishedByID, PublishedAt: &at, DeepLink: &deepLink}, nil
}

type mockReviewRepo struct {
	CreateFunc      func(ctx context.Context, rec *domain.ReviewRecord) (*domain.ReviewRecord, error)
	GetByItemIDFunc func(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewRecord, error)
}

func (m *mockReviewRepo) Create(ctx context.Context, rec *domain.ReviewRecord) (*domain.ReviewRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	return rec, nil
}

func (m *mockReviewRepo) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewRecord, error) {
	if m.GetByItemIDFunc != nil {
		return m.GetByItemIDFunc(ctx, itemID)
	}
	return []*domain.ReviewRecord{}, nil
}

type mockAuditRepo struct {
	CreateFunc      func(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error)
	GetByEntityFunc func(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error)

	records []domain.AuditRecord
}

func (m *mockAuditRepo) Create(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.records = append(m.records, record)
	return record, nil
}

func (m *mockAuditRepo) GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	if m.GetByEntityFunc != nil {
		return m.GetByEntityFunc(ctx, entityType, entityID, limit)
	}
	if len(m.records) > limit {
		return m.records[:limit], nil
	}
	return m.records, nil
}

type mockTopicRepo struct {
	AdvanceFunc   func(ctx context.Context, id uuid.UUID, from, to domain.TopicStatus) (bool, error)
	SetStatusFunc func(ctx context.Context, id uuid.UUID, status domain.TopicStatus) (*domain.Topic, error)
}

func (m *mockTopicRepo) Advance(ctx context.Context, id uuid.UUID, from, to domain.TopicStatus) (bool, error) {
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *mockTopicRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.TopicStatus) (*domain.Topic, error) {
	if m.SetStatusFunc != nil {
		return m.SetStatusFunc(ctx, id, status)
	}
	return &domain.Topic{ID: id, Status: status}, nil
}

type mockAnalyticsRepo struct {
	EnsureRowFunc func(ctx context.Context, videoID uuid.UUID) error
}

func (m *mockAnalyticsRepo) EnsureRow(ctx context.Context, videoID uuid.UUID) error {
	if m.EnsureRowFunc != nil {
		return m.EnsureRowFunc(ctx, videoID)
	}
	return nil
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockNotifier struct {
	PublishFunc func(ctx context.Context, event domain.WorkflowEvent) error

	events []domain.WorkflowEvent
}

func (m *mockNotifier) Publish(ctx context.Context, event domain.WorkflowEvent) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	m.events = append(m.events, event)
	return nil
}

// ===========================================================================
// Test setup
// ===========================================================================

type testDeps struct {
	items     *mockItemRepo
	reviews   *mockReviewRepo
	audit     *mockAuditRepo
	topics    *mockTopicRepo
	analytics *mockAnalyticsRepo
	tx        *mockTxManager
	notifier  *mockNotifier
}

func defaultCfg() config.WorkflowConfig {
	return config.WorkflowConfig{
		DeepLinkBase:      "medwave://content",
		MaxCommentsLength: 5000,
		QueueLimit:        200,
	}
}

func newTestService(t *testing.T) (*Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		items:     &mockItemRepo{},
		reviews:   &mockReviewRepo{},
		audit:     &mockAuditRepo{},
		topics:    &mockTopicRepo{},
		analytics: &mockAnalyticsRepo{},
		tx:        &mockTxManager{},
		notifier:  &mockNotifier{},
	}
	svc := NewService(
		slog.Default(),
		deps.items,
		deps.reviews,
		deps.audit,
		deps.topics,
		deps.analytics,
		deps.tx,
		defaultCfg(),
	)
	svc.SetNotifier(deps.notifier)
	return svc, deps
}

func draftScript() *domain.ContentItem {
	now := time.Now().UTC()
	return &domain.ContentItem{
		ID:        uuid.New(),
		TopicID:   uuid.New(),
		Kind:      domain.ContentKindScript,
		Title:     "Hypertension basics",
		Stage:     domain.StageDraft,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func itemAt(kind domain.ContentKind, stage domain.Stage) *domain.ContentItem {
	item := draftScript()
	item.Kind = kind
	item.Stage = stage
	return item
}

func strPtr(s string) *string { return &s }
