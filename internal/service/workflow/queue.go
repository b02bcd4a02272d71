package workflow

import (
	"context"
	"fmt"

	"github.com/medwave/review-backend/internal/domain"
	"github.com/medwave/review-backend/internal/workflow"
)

// GetQueue returns the point-in-time review queue for the actor's role over
// one content kind: unclaimed items at the stages the role may act on,
// oldest first, plus the actor's own claimed items, most recently claimed
// first. Nothing is locked; staleness between this read and a later claim
// attempt is resolved by the claim's compare-and-swap, not here.
func (s *Service) GetQueue(ctx context.Context, input QueueInput) (*domain.Queue, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	stages := workflow.ReviewStagesFor(input.Kind, input.Actor.Role)

	available, err := s.items.ListUnclaimed(ctx, input.Kind, stages, s.cfg.QueueLimit)
	if err != nil {
		return nil, fmt.Errorf("list available: %w", err)
	}

	mine, err := s.items.ListClaimedBy(ctx, input.Kind, stages, input.Actor.ID, s.cfg.QueueLimit)
	if err != nil {
		return nil, fmt.Errorf("list mine: %w", err)
	}

	return &domain.Queue{Available: available, Mine: mine}, nil
}
