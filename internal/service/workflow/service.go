// Package workflow implements the workflow engine: validated stage
// transitions, the exclusive claim subsystem, queue reads, and the
// lock/unlock/publish specializations. Every mutating operation runs as one
// transaction; the notification dispatch afterwards is best-effort.
package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/config"
	"github.com/medwave/review-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)
	Holder(ctx context.Context, itemID uuid.UUID) (uuid.UUID, string, error)
	ListUnclaimed(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, limit int) ([]*domain.ContentItem, error)
	ListClaimedBy(ctx context.Context, kind domain.ContentKind, stages []domain.Stage, reviewerID uuid.UUID, limit int) ([]*domain.ContentItem, error)
	SetStage(ctx context.Context, id uuid.UUID, stage domain.Stage) (*domain.ContentItem, error)
	TryClaim(ctx context.Context, itemID, reviewerID uuid.UUID, stage domain.Stage, at time.Time) (*domain.ContentItem, error)
	ReleaseClaim(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error)
	Lock(ctx context.Context, itemID, lockedByID uuid.UUID, at time.Time) (*domain.ContentItem, error)
	Unlock(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error)
	MarkPublished(ctx context.Context, itemID, publishedByID uuid.UUID, at time.Time, deepLink string) (*domain.ContentItem, error)
}

type reviewRepo interface {
	Create(ctx context.Context, rec *domain.ReviewRecord) (*domain.ReviewRecord, error)
	GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewRecord, error)
}

type auditRepo interface {
	Create(ctx context.Context, record domain.AuditRecord) (domain.AuditRecord, error)
	GetByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error)
}

type topicRepo interface {
	Advance(ctx context.Context, id uuid.UUID, from, to domain.TopicStatus) (bool, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.TopicStatus) (*domain.Topic, error)
}

type analyticsRepo interface {
	EnsureRow(ctx context.Context, videoID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// notifier delivers workflow events after commit. Implementations must not
// block the caller for long; errors are logged and dropped.
type notifier interface {
	Publish(ctx context.Context, event domain.WorkflowEvent) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the workflow engine business logic.
type Service struct {
	log       *slog.Logger
	items     itemRepo
	reviews   reviewRepo
	audit     auditRepo
	topics    topicRepo
	analytics analyticsRepo
	tx        txManager
	notifier  notifier
	cfg       config.WorkflowConfig

	// now is swappable in tests.
	now func() time.Time
}

// NewService creates a new workflow service.
func NewService(
	logger *slog.Logger,
	items itemRepo,
	reviews reviewRepo,
	audit auditRepo,
	topics topicRepo,
	analytics analyticsRepo,
	tx txManager,
	cfg config.WorkflowConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "workflow"),
		items:     items,
		reviews:   reviews,
		audit:     audit,
		topics:    topics,
		analytics: analytics,
		tx:        tx,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier injects the optional notification dispatcher.
func (s *Service) SetNotifier(n notifier) {
	s.notifier = n
}

// notify hands the event to the dispatcher, if any. Failures never propagate:
// the transition has already committed.
func (s *Service) notify(ctx context.Context, event domain.WorkflowEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.log.Warn("notification dropped",
			"event_type", event.EventType,
			"entity_id", event.EntityID,
			"error", err)
	}
}

// auditAction builds the audit action name for an action applied to a kind,
// e.g. "REJECT_SCRIPT" or "PUBLISH_VIDEO".
func auditAction(action domain.Action, kind domain.ContentKind) string {
	return string(action) + "_" + string(kind)
}

// stageChange is the audit changes payload for a stage move.
func stageChange(from, to domain.Stage) map[string]any {
	return map[string]any{"old_stage": string(from), "new_stage": string(to)}
}
