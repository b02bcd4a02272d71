package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/medwave/review-backend/internal/domain"
)

func TestValidate_LegalTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		kind   domain.ContentKind
		stage  domain.Stage
		action domain.Action
		role   domain.Role
		want   domain.Stage
	}{
		{"script submit", domain.ContentKindScript, domain.StageDraft, domain.ActionSubmit, domain.RoleAgency, domain.StageMedicalReview},
		{"script medical approve", domain.ContentKindScript, domain.StageMedicalReview, domain.ActionApprove, domain.RoleMedicalAffairs, domain.StageBrandReview},
		{"script brand approve", domain.ContentKindScript, domain.StageBrandReview, domain.ActionApprove, domain.RoleBrandTeam, domain.StageDoctorReview},
		{"script doctor approve lands on APPROVED not LOCKED", domain.ContentKindScript, domain.StageDoctorReview, domain.ActionApprove, domain.RoleDoctor, domain.StageApproved},
		{"script archive from draft", domain.ContentKindScript, domain.StageDraft, domain.ActionArchive, domain.RoleAgency, domain.StageArchived},
		{"video submit goes to brand review first", domain.ContentKindVideo, domain.StageDraft, domain.ActionSubmit, domain.RoleAgency, domain.StageBrandReview},
		{"video brand approve", domain.ContentKindVideo, domain.StageBrandReview, domain.ActionApprove, domain.RoleBrandTeam, domain.StageMedicalReview},
		{"video doctor approve", domain.ContentKindVideo, domain.StageDoctorReview, domain.ActionApprove, domain.RoleDoctor, domain.StageApproved},
		{"video publish from locked", domain.ContentKindVideo, domain.StageLocked, domain.ActionPublish, domain.RolePublisher, domain.StagePublished},
		{"super admin can submit", domain.ContentKindScript, domain.StageDraft, domain.ActionSubmit, domain.RoleSuperAdmin, domain.StageMedicalReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Validate(tt.kind, tt.stage, tt.action, tt.role)
			if err != nil {
				t.Fatalf("Validate: unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("next stage: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidate_RejectionGoesOneStageBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		kind  domain.ContentKind
		stage domain.Stage
		role  domain.Role
		want  domain.Stage
	}{
		{"script medical reject to draft", domain.ContentKindScript, domain.StageMedicalReview, domain.RoleMedicalAffairs, domain.StageDraft},
		{"script brand reject to medical", domain.ContentKindScript, domain.StageBrandReview, domain.RoleBrandTeam, domain.StageMedicalReview},
		{"script doctor reject to brand", domain.ContentKindScript, domain.StageDoctorReview, domain.RoleDoctor, domain.StageBrandReview},
		{"video brand reject to draft", domain.ContentKindVideo, domain.StageBrandReview, domain.RoleBrandTeam, domain.StageDraft},
		{"video medical reject to brand", domain.ContentKindVideo, domain.StageMedicalReview, domain.RoleMedicalAffairs, domain.StageBrandReview},
		{"video doctor reject to medical", domain.ContentKindVideo, domain.StageDoctorReview, domain.RoleDoctor, domain.StageMedicalReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Validate(tt.kind, tt.stage, domain.ActionReject, tt.role)
			if err != nil {
				t.Fatalf("Validate: unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("reject target: got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidate_UndefinedCombinationsAreInvalid(t *testing.T) {
	t.Parallel()

	// Every (stage, action) pair absent from the table must come back as
	// an invalid transition, for every stage including ones outside the
	// kind's own lifecycle.
	allStages := []domain.Stage{
		domain.StageDraft, domain.StageMedicalReview, domain.StageBrandReview,
		domain.StageDoctorReview, domain.StageApproved, domain.StageLocked,
		domain.StagePublished, domain.StageArchived,
	}
	allActions := []domain.Action{
		domain.ActionSubmit, domain.ActionApprove, domain.ActionReject,
		domain.ActionLock, domain.ActionUnlock, domain.ActionPublish,
		domain.ActionArchive,
	}

	for _, kind := range []domain.ContentKind{domain.ContentKindScript, domain.ContentKindVideo} {
		for _, stage := range allStages {
			for _, action := range allActions {
				if _, err := Lookup(kind, stage, action); err == nil {
					continue // defined pair, covered elsewhere
				}

				_, err := Validate(kind, stage, action, domain.RoleSuperAdmin)
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Errorf("%s %s+%s: got %v, want ErrInvalidTransition", kind, stage, action, err)
				}

				var te *domain.TransitionError
				if !errors.As(err, &te) {
					t.Errorf("%s %s+%s: error is not a *TransitionError", kind, stage, action)
				}
			}
		}
	}
}

func TestValidate_WrongRoleIsForbidden(t *testing.T) {
	t.Parallel()

	_, err := Validate(domain.ContentKindScript, domain.StageMedicalReview, domain.ActionApprove, domain.RoleAgency)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}

	var fe *domain.ForbiddenError
	if !errors.As(err, &fe) {
		t.Fatalf("error is not a *ForbiddenError: %v", err)
	}
	if fe.ActorRole != domain.RoleAgency {
		t.Errorf("ActorRole: got %s, want %s", fe.ActorRole, domain.RoleAgency)
	}
	if len(fe.AllowedRoles) == 0 {
		t.Error("AllowedRoles should not be empty")
	}

	// The message names both the required set and the actor's role.
	msg := err.Error()
	if !strings.Contains(msg, string(domain.RoleMedicalAffairs)) || !strings.Contains(msg, string(domain.RoleAgency)) {
		t.Errorf("message should name allowed roles and actor role, got %q", msg)
	}
}

func TestValidate_LockAndUnlockAreNotInTheTable(t *testing.T) {
	t.Parallel()

	// Lock and Unlock are privileged side doors handled by their own
	// guarded operations; the generic table must not resolve them.
	if _, err := Validate(domain.ContentKindScript, domain.StageApproved, domain.ActionLock, domain.RoleSuperAdmin); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("LOCK via table: got %v, want ErrInvalidTransition", err)
	}
	if _, err := Validate(domain.ContentKindVideo, domain.StageLocked, domain.ActionUnlock, domain.RoleSuperAdmin); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("UNLOCK via table: got %v, want ErrInvalidTransition", err)
	}
}

func TestReviewerRoleFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stage  domain.Stage
		want   domain.Role
		wantOK bool
	}{
		{domain.StageMedicalReview, domain.RoleMedicalAffairs, true},
		{domain.StageBrandReview, domain.RoleBrandTeam, true},
		{domain.StageDoctorReview, domain.RoleDoctor, true},
		{domain.StageDraft, "", false},
		{domain.StageApproved, "", false},
		{domain.StageLocked, "", false},
	}

	for _, tt := range tests {
		role, ok := ReviewerRoleFor(tt.stage)
		if ok != tt.wantOK || role != tt.want {
			t.Errorf("ReviewerRoleFor(%s): got (%s, %v), want (%s, %v)", tt.stage, role, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCanReview(t *testing.T) {
	t.Parallel()

	if !CanReview(domain.RoleMedicalAffairs, domain.StageMedicalReview) {
		t.Error("medical affairs should review MEDICAL_REVIEW")
	}
	if CanReview(domain.RoleMedicalAffairs, domain.StageBrandReview) {
		t.Error("medical affairs should not review BRAND_REVIEW")
	}
	if !CanReview(domain.RoleSuperAdmin, domain.StageDoctorReview) {
		t.Error("super admin should review any review stage")
	}
	if CanReview(domain.RoleSuperAdmin, domain.StageDraft) {
		t.Error("DRAFT is not claimable, even for super admin")
	}
}

func TestReviewStagesFor(t *testing.T) {
	t.Parallel()

	got := ReviewStagesFor(domain.ContentKindScript, domain.RoleDoctor)
	if len(got) != 1 || got[0] != domain.StageDoctorReview {
		t.Errorf("doctor script stages: got %v", got)
	}

	got = ReviewStagesFor(domain.ContentKindVideo, domain.RoleSuperAdmin)
	want := []domain.Stage{domain.StageBrandReview, domain.StageMedicalReview, domain.StageDoctorReview}
	if len(got) != len(want) {
		t.Fatalf("super admin video stages: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage[%d]: got %s, want %s (video review order)", i, got[i], want[i])
		}
	}

	if stages := ReviewStagesFor(domain.ContentKindScript, domain.RoleAgency); stages != nil {
		t.Errorf("agency has no review stages, got %v", stages)
	}
}
