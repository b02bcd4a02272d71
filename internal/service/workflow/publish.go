package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/domain"
	"github.com/medwave/review-backend/internal/workflow"
)

// Publish releases a locked video to production: LOCKED → PUBLISHED, publish
// trio stamped with a deterministic deep link, a zero-initialized analytics
// row ensured, and the parent topic marked completed, all in one
// transaction. PUBLISH is undefined for scripts; the transition table
// rejects it there.
func (s *Service) Publish(ctx context.Context, input TransitionInput) (*domain.ContentItem, error) {
	input.Action = domain.ActionPublish
	if err := input.Validate(s.cfg.MaxCommentsLength); err != nil {
		return nil, err
	}

	var (
		published *domain.ContentItem
		event     domain.WorkflowEvent
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.items.GetByID(txCtx, input.ItemID)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}

		next, err := workflow.Validate(item.Kind, item.Stage, domain.ActionPublish, input.Actor.Role)
		if err != nil {
			return err
		}

		published, err = s.items.MarkPublished(txCtx, item.ID, input.Actor.ID, s.now(), s.DeepLink(item.ID))
		if err != nil {
			return fmt.Errorf("mark published: %w", err)
		}

		if err := s.analytics.EnsureRow(txCtx, item.ID); err != nil {
			return fmt.Errorf("ensure analytics row: %w", err)
		}

		if _, err := s.topics.SetStatus(txCtx, item.TopicID, domain.TopicStatusCompleted); err != nil {
			return fmt.Errorf("complete topic: %w", err)
		}

		actionName := auditAction(domain.ActionPublish, item.Kind)
		_, err = s.audit.Create(txCtx, domain.AuditRecord{
			ID:         uuid.New(),
			ActorID:    input.Actor.ID,
			Action:     actionName,
			EntityType: domain.EntityTypeForKind(item.Kind),
			EntityID:   &item.ID,
			Changes:    stageChange(item.Stage, next),
			IP:         input.Meta.IP,
			UserAgent:  input.Meta.UserAgent,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return fmt.Errorf("audit publish: %w", err)
		}

		event = domain.WorkflowEvent{
			EventType: actionName,
			EntityID:  item.ID,
			TopicID:   item.TopicID,
			ActorID:   input.Actor.ID,
			NextStage: next,
			Comments:  input.Comments,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("video published",
		"item_id", published.ID,
		"deep_link", published.DeepLink,
		"actor_id", input.Actor.ID)
	s.notify(ctx, event)

	return published, nil
}

// DeepLink mints the stable deep link for a published item. The same id
// always yields the same link.
func (s *Service) DeepLink(itemID uuid.UUID) string {
	return s.cfg.DeepLinkBase + "/videos/" + itemID.String()
}
