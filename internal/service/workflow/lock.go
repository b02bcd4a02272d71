package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/domain"
)

var lockRoles = []domain.Role{domain.RoleContentApprover, domain.RoleSuperAdmin}

// Lock freezes a favorably reviewed item for production: APPROVED → LOCKED,
// with the lock pair stamped. Locking is a privileged side door, not a
// reviewer action, so its preconditions are checked here rather than in the
// transition tables.
func (s *Service) Lock(ctx context.Context, input TransitionInput) (*domain.ContentItem, error) {
	input.Action = domain.ActionLock
	if err := input.Validate(s.cfg.MaxCommentsLength); err != nil {
		return nil, err
	}

	var (
		locked *domain.ContentItem
		event  domain.WorkflowEvent
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.items.GetByID(txCtx, input.ItemID)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}

		if item.Stage != domain.StageApproved {
			return &domain.TransitionError{Kind: item.Kind, Stage: item.Stage, Action: domain.ActionLock}
		}
		if input.Actor.Role != domain.RoleContentApprover && input.Actor.Role != domain.RoleSuperAdmin {
			return &domain.ForbiddenError{Action: domain.ActionLock, ActorRole: input.Actor.Role, AllowedRoles: lockRoles}
		}

		locked, err = s.items.Lock(txCtx, item.ID, input.Actor.ID, s.now())
		if err != nil {
			return fmt.Errorf("lock item: %w", err)
		}

		actionName := auditAction(domain.ActionLock, item.Kind)
		_, err = s.audit.Create(txCtx, domain.AuditRecord{
			ID:         uuid.New(),
			ActorID:    input.Actor.ID,
			Action:     actionName,
			EntityType: domain.EntityTypeForKind(item.Kind),
			EntityID:   &item.ID,
			Changes:    stageChange(item.Stage, domain.StageLocked),
			IP:         input.Meta.IP,
			UserAgent:  input.Meta.UserAgent,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return fmt.Errorf("audit lock: %w", err)
		}

		event = domain.WorkflowEvent{
			EventType: actionName,
			EntityID:  item.ID,
			TopicID:   item.TopicID,
			ActorID:   input.Actor.ID,
			NextStage: domain.StageLocked,
			Comments:  input.Comments,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("item locked", "item_id", locked.ID, "actor_id", input.Actor.ID)
	s.notify(ctx, event)

	return locked, nil
}

// Unlock is the emergency override that reverts LOCKED → APPROVED (never
// further back) and clears the lock pair. Super-admin only, deliberately:
// this is not part of the ordinary flow.
func (s *Service) Unlock(ctx context.Context, input TransitionInput) (*domain.ContentItem, error) {
	input.Action = domain.ActionUnlock
	if err := input.Validate(s.cfg.MaxCommentsLength); err != nil {
		return nil, err
	}

	var (
		unlocked *domain.ContentItem
		event    domain.WorkflowEvent
	)
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.items.GetByID(txCtx, input.ItemID)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}

		if item.Stage != domain.StageLocked {
			return &domain.TransitionError{Kind: item.Kind, Stage: item.Stage, Action: domain.ActionUnlock}
		}
		if input.Actor.Role != domain.RoleSuperAdmin {
			return &domain.ForbiddenError{Action: domain.ActionUnlock, ActorRole: input.Actor.Role, AllowedRoles: []domain.Role{domain.RoleSuperAdmin}}
		}

		unlocked, err = s.items.Unlock(txCtx, item.ID)
		if err != nil {
			return fmt.Errorf("unlock item: %w", err)
		}

		actionName := auditAction(domain.ActionUnlock, item.Kind)
		_, err = s.audit.Create(txCtx, domain.AuditRecord{
			ID:         uuid.New(),
			ActorID:    input.Actor.ID,
			Action:     actionName,
			EntityType: domain.EntityTypeForKind(item.Kind),
			EntityID:   &item.ID,
			Changes:    stageChange(item.Stage, domain.StageApproved),
			IP:         input.Meta.IP,
			UserAgent:  input.Meta.UserAgent,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return fmt.Errorf("audit unlock: %w", err)
		}

		event = domain.WorkflowEvent{
			EventType: actionName,
			EntityID:  item.ID,
			TopicID:   item.TopicID,
			ActorID:   input.Actor.ID,
			NextStage: domain.StageApproved,
			Comments:  input.Comments,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("item unlocked", "item_id", unlocked.ID, "actor_id", input.Actor.ID)
	s.notify(ctx, event)

	return unlocked, nil
}
