package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestTransitionError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := error(&TransitionError{Kind: ContentKindScript, Stage: StageDraft, Action: ActionPublish})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatal("TransitionError must unwrap to ErrInvalidTransition")
	}
	if !strings.Contains(err.Error(), "PUBLISH") || !strings.Contains(err.Error(), "DRAFT") {
		t.Errorf("message should name action and stage: %q", err.Error())
	}
}

func TestForbiddenError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := error(&ForbiddenError{
		Action:       ActionApprove,
		ActorRole:    RoleAgency,
		AllowedRoles: []Role{RoleMedicalAffairs, RoleSuperAdmin},
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatal("ForbiddenError must unwrap to ErrForbidden")
	}
	// Diagnostics name both the actor role and the allowed set.
	for _, want := range []string{"AGENCY", "MEDICAL_AFFAIRS", "SUPER_ADMIN"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("message should contain %q: %q", want, err.Error())
		}
	}
}

func TestClaimedError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := error(&ClaimedError{ItemID: uuid.New(), HolderID: uuid.New(), HolderName: "Dr. Ortega"})
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatal("ClaimedError must unwrap to ErrAlreadyClaimed")
	}
	if !strings.Contains(err.Error(), "Dr. Ortega") {
		t.Errorf("message should name the holder: %q", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	single := NewValidationError("comments", "required for REJECT")
	if !errors.Is(single, ErrValidation) {
		t.Fatal("ValidationError must unwrap to ErrValidation")
	}
	if !strings.Contains(single.Error(), "comments") {
		t.Errorf("single-field message should name the field: %q", single.Error())
	}

	multi := NewValidationErrors([]FieldError{
		{Field: "item_id", Message: "required"},
		{Field: "actor_role", Message: "unknown role"},
	})
	if !errors.Is(multi, ErrValidation) {
		t.Fatal("multi-field ValidationError must unwrap to ErrValidation")
	}
	if !strings.Contains(multi.Error(), "2 errors") {
		t.Errorf("multi-field message should count errors: %q", multi.Error())
	}
}
