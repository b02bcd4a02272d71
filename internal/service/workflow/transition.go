package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/domain"
	"github.com/medwave/review-backend/internal/workflow"
)

// ApplyTransition applies a workflow action to an item as one atomic
// transaction: stage change (which clears any claim), conditional review
// record, topic advancement on first submit, and one audit entry. LOCK,
// UNLOCK and PUBLISH are privileged side doors with their own preconditions
// and are routed to the dedicated operations.
func (s *Service) ApplyTransition(ctx context.Context, input TransitionInput) (*domain.ContentItem, error) {
	switch input.Action {
	case domain.ActionLock:
		return s.Lock(ctx, input)
	case domain.ActionUnlock:
		return s.Unlock(ctx, input)
	case domain.ActionPublish:
		return s.Publish(ctx, input)
	}

	if err := input.Validate(s.cfg.MaxCommentsLength); err != nil {
		return nil, err
	}

	var (
		updated *domain.ContentItem
		event   domain.WorkflowEvent
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.items.GetByID(txCtx, input.ItemID)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}

		next, err := workflow.Validate(item.Kind, item.Stage, input.Action, input.Actor.Role)
		if err != nil {
			return err
		}

		updated, err = s.items.SetStage(txCtx, item.ID, next)
		if err != nil {
			return fmt.Errorf("set stage: %w", err)
		}

		if decision, ok := decisionFor(input.Action); ok {
			_, err = s.reviews.Create(txCtx, &domain.ReviewRecord{
				ID:           uuid.New(),
				ItemID:       item.ID,
				Kind:         item.Kind,
				ReviewerID:   input.Actor.ID,
				ReviewerRole: input.Actor.Role,
				Decision:     decision,
				Comments:     input.Comments,
				CreatedAt:    s.now(),
			})
			if err != nil {
				return fmt.Errorf("create review record: %w", err)
			}
		}

		// The first submit on a topic's item moves the topic out of NEW.
		if input.Action == domain.ActionSubmit {
			if _, err := s.topics.Advance(txCtx, item.TopicID, domain.TopicStatusNew, domain.TopicStatusInProgress); err != nil {
				return fmt.Errorf("advance topic: %w", err)
			}
		}

		actionName := auditAction(input.Action, item.Kind)
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
			return fmt.Errorf("audit transition: %w", err)
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

	s.log.Info("transition applied",
		"item_id", updated.ID,
		"action", input.Action,
		"stage", updated.Stage,
		"actor_id", input.Actor.ID)
	s.notify(ctx, event)

	return updated, nil
}

// ValidateTransition resolves a transition against the tables without
// applying it. Useful for callers that want to grey out actions up front;
// the authoritative check still happens inside ApplyTransition.
func (s *Service) ValidateTransition(kind domain.ContentKind, current domain.Stage, action domain.Action, actorRole domain.Role) (domain.Stage, error) {
	return workflow.Validate(kind, current, action, actorRole)
}

// decisionFor maps a review action to the decision it records. Only APPROVE
// and REJECT produce review records.
func decisionFor(action domain.Action) (domain.ReviewDecision, bool) {
	switch action {
	case domain.ActionApprove:
		return domain.ReviewDecisionApproved, true
	case domain.ActionReject:
		return domain.ReviewDecisionRejected, true
	}
	return "", false
}
