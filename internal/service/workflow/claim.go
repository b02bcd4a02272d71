package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/domain"
	"github.com/medwave/review-backend/internal/workflow"
)

// Claim grants the actor exclusive custody of an item at its current review
// stage. Exclusivity rests on a conditional update that only succeeds while
// the claim column is still NULL at write time; two racing reviewers can
// never both win, and the loser learns who did.
func (s *Service) Claim(ctx context.Context, input ClaimInput) (*domain.ContentItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}

	// Re-claim by the current holder is an idempotent success: the lease is
	// not refreshed and no audit entry is written.
	if item.ClaimedBy(input.Actor.ID) {
		return item, nil
	}
	if item.IsClaimed() {
		return nil, s.claimedError(ctx, item)
	}

	if !workflow.CanReview(input.Actor.Role, item.Stage) {
		return nil, fmt.Errorf("claim at stage %s requires role %s, actor has role %s: %w",
			item.Stage, requiredReviewer(item.Stage), input.Actor.Role, domain.ErrForbidden)
	}

	var claimed *domain.ContentItem
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// The stage observed above is carried into the compare-and-swap, so
		// the stage/role check just done cannot be invalidated by a
		// concurrent transition between the read and this write.
		var claimErr error
		claimed, claimErr = s.items.TryClaim(txCtx, item.ID, input.Actor.ID, item.Stage, s.now())
		if claimErr != nil {
			return fmt.Errorf("claim item: %w", claimErr)
		}
		if claimed == nil {
			// Zero rows matched: somebody won the race between our read and
			// this write, the item moved to another stage, or it is gone.
			return s.claimLost(txCtx, item.ID, input.Actor)
		}

		_, auditErr := s.audit.Create(txCtx, domain.AuditRecord{
			ID:         uuid.New(),
			ActorID:    input.Actor.ID,
			Action:     "CLAIM_" + string(item.Kind),
			EntityType: domain.EntityTypeForKind(item.Kind),
			EntityID:   &item.ID,
			Changes:    map[string]any{"stage": string(item.Stage), "assigned_reviewer_id": input.Actor.ID.String()},
			IP:         input.Meta.IP,
			UserAgent:  input.Meta.UserAgent,
			CreatedAt:  s.now(),
		})
		if auditErr != nil {
			return fmt.Errorf("audit claim: %w", auditErr)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("item claimed",
		"item_id", claimed.ID,
		"stage", claimed.Stage,
		"reviewer_id", input.Actor.ID)

	return claimed, nil
}

// Release revokes an item's claim. The holder may release their own claim;
// a super-admin may force-release anyone's, which is audited under a
// distinct action name. Releasing an unclaimed item is an idempotent no-op.
func (s *Service) Release(ctx context.Context, input ClaimInput) (*domain.ContentItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var released *domain.ContentItem
	txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.items.GetByID(txCtx, input.ItemID)
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}

		if !item.IsClaimed() {
			released = item
			return nil
		}

		action := "RELEASE_" + string(item.Kind)
		if !item.ClaimedBy(input.Actor.ID) {
			if input.Actor.Role != domain.RoleSuperAdmin {
				return fmt.Errorf("release of item %s held by another reviewer requires role %s, actor has role %s: %w",
					item.ID, domain.RoleSuperAdmin, input.Actor.Role, domain.ErrForbidden)
			}
			action = "FORCE_RELEASE_" + string(item.Kind)
		}

		holderID := *item.AssignedReviewerID
		released, err = s.items.ReleaseClaim(txCtx, item.ID)
		if err != nil {
			return fmt.Errorf("release claim: %w", err)
		}

		_, err = s.audit.Create(txCtx, domain.AuditRecord{
			ID:         uuid.New(),
			ActorID:    input.Actor.ID,
			Action:     action,
			EntityType: domain.EntityTypeForKind(item.Kind),
			EntityID:   &item.ID,
			Changes:    map[string]any{"stage": string(item.Stage), "released_reviewer_id": holderID.String()},
			IP:         input.Meta.IP,
			UserAgent:  input.Meta.UserAgent,
			CreatedAt:  s.now(),
		})
		if err != nil {
			return fmt.Errorf("audit release: %w", err)
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return released, nil
}

// claimedError builds the AlreadyClaimed error for an item somebody else
// holds, naming the holder so the caller can pick another item.
func (s *Service) claimedError(ctx context.Context, item *domain.ContentItem) error {
	holderID, holderName, err := s.items.Holder(ctx, item.ID)
	if err != nil {
		// Holder row gone (user deleted); fall back to the raw id.
		holderID = *item.AssignedReviewerID
		holderName = holderID.String()
	}
	return &domain.ClaimedError{ItemID: item.ID, HolderID: holderID, HolderName: holderName}
}

// claimLost resolves why a compare-and-swap claim matched no row: held by
// somebody else, moved to a stage the actor may not review, or gone.
func (s *Service) claimLost(ctx context.Context, itemID uuid.UUID, actor Actor) error {
	holderID, holderName, err := s.items.Holder(ctx, itemID)
	if err == nil {
		return &domain.ClaimedError{ItemID: itemID, HolderID: holderID, HolderName: holderName}
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("resolve claim holder: %w", err)
	}

	// Unclaimed but unmatched: the item is gone, or a concurrent transition
	// moved it off the stage we observed. Report against the fresh stage.
	item, getErr := s.items.GetByID(ctx, itemID)
	if getErr != nil {
		return fmt.Errorf("load item: %w", getErr)
	}
	if !workflow.CanReview(actor.Role, item.Stage) {
		return fmt.Errorf("claim at stage %s requires role %s, actor has role %s: %w",
			item.Stage, requiredReviewer(item.Stage), actor.Role, domain.ErrForbidden)
	}
	return fmt.Errorf("item %s changed stage during claim: %w", itemID, domain.ErrAlreadyClaimed)
}

// requiredReviewer names the reviewer role for a stage in diagnostics; for
// non-review stages there is none.
func requiredReviewer(stage domain.Stage) domain.Role {
	role, ok := workflow.ReviewerRoleFor(stage)
	if !ok {
		return "<none>"
	}
	return role
}
