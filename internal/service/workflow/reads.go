package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/domain"
)

// GetItem returns one item's current workflow state.
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.ContentItem, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item: %w", err)
	}
	return item, nil
}

// ReviewHistory returns an item's review decisions, newest first.
func (s *Service) ReviewHistory(ctx context.Context, itemID uuid.UUID) ([]*domain.ReviewRecord, error) {
	records, err := s.reviews.GetByItemID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load review history: %w", err)
	}
	return records, nil
}

// AuditTrail returns the change history for one entity, newest first.
func (s *Service) AuditTrail(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, limit int) ([]domain.AuditRecord, error) {
	if limit <= 0 || limit > s.cfg.QueueLimit {
		limit = s.cfg.QueueLimit
	}
	records, err := s.audit.GetByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("load audit trail: %w", err)
	}
	return records, nil
}
