package workflow

import (
	"strings"

	"github.com/google/uuid"

	"github.com/medwave/review-backend/internal/domain"
)

// Actor is the authenticated identity performing an operation. Authentication
// and the coarse role→permission check happen upstream; the engine re-checks
// only the stage-role mapping the transition tables define.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

func (a Actor) validate() []domain.FieldError {
	var errs []domain.FieldError
	if a.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if !a.Role.IsValid() {
		errs = append(errs, domain.FieldError{Field: "actor_role", Message: "unknown role"})
	}
	return errs
}

// RequestMeta carries optional actor metadata recorded on audit entries.
type RequestMeta struct {
	IP        *string
	UserAgent *string
}

// TransitionInput holds the parameters for ApplyTransition.
type TransitionInput struct {
	ItemID   uuid.UUID
	Action   domain.Action
	Actor    Actor
	Comments *string
	Meta     RequestMeta
}

// Validate checks all fields and collects all errors. REJECT without
// comments fails here, before any transaction is opened.
func (i *TransitionInput) Validate(maxComments int) error {
	errs := i.Actor.validate()

	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if !i.Action.IsValid() {
		errs = append(errs, domain.FieldError{Field: "action", Message: "unknown action"})
	}

	if i.Action == domain.ActionReject {
		if i.Comments == nil || strings.TrimSpace(*i.Comments) == "" {
			errs = append(errs, domain.FieldError{Field: "comments", Message: "required for REJECT"})
		}
	}
	if i.Comments != nil && len(*i.Comments) > maxComments {
		errs = append(errs, domain.FieldError{Field: "comments", Message: "too long"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ClaimInput holds the parameters for Claim and Release.
type ClaimInput struct {
	ItemID uuid.UUID
	Actor  Actor
	Meta   RequestMeta
}

// Validate checks all fields and collects all errors.
func (i *ClaimInput) Validate() error {
	errs := i.Actor.validate()

	if i.ItemID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "item_id", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// QueueInput holds the parameters for GetQueue.
type QueueInput struct {
	Kind  domain.ContentKind
	Actor Actor
}

// Validate checks all fields and collects all errors.
func (i *QueueInput) Validate() error {
	errs := i.Actor.validate()

	if !i.Kind.IsValid() {
		errs = append(errs, domain.FieldError{Field: "kind", Message: "unknown kind"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
