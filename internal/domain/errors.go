package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyClaimed    = errors.New("already claimed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from collected field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// TransitionError reports an action that is undefined for the item's
// current stage. Undefined (stage, action) combinations are illegal by
// absence from the transition table.
type TransitionError struct {
	Kind   ContentKind
	Stage  Stage
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: action %s is not allowed at stage %s", e.Kind, e.Action, e.Stage)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ForbiddenError reports an actor role outside the allowed set for a
// defined transition. The allowed set is included for diagnostics only;
// access control proper is enforced upstream.
type ForbiddenError struct {
	Action       Action
	ActorRole    Role
	AllowedRoles []Role
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s requires one of %v, actor has role %s", e.Action, e.AllowedRoles, e.ActorRole)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// ClaimedError reports a claim attempt on an item held by another reviewer.
// HolderName lets the caller tell the user who to ask, or to pick another
// item.
type ClaimedError struct {
	ItemID     uuid.UUID
	HolderID   uuid.UUID
	HolderName string
}

func (e *ClaimedError) Error() string {
	return fmt.Sprintf("item %s is already claimed by %s", e.ItemID, e.HolderName)
}

func (e *ClaimedError) Unwrap() error { return ErrAlreadyClaimed }
