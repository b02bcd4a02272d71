package domain

import (
	"github.com/google/uuid"
)

// WorkflowEvent is the payload handed to the notification dispatcher after a
// successful transition. Delivery is best-effort and happens outside the
// transaction; consumers must tolerate duplicates and gaps.
type WorkflowEvent struct {
	EventType string    `json:"event_type"`
	EntityID  uuid.UUID `json:"entity_id"`
	TopicID   uuid.UUID `json:"topic_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	NextStage Stage     `json:"next_stage"`
	Comments  *string   `json:"comments,omitempty"`
}
