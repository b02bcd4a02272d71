// Package workflow defines the per-kind transition tables and the validator
// that resolves a (stage, action, role) request against them. The tables are
// immutable package-level data built once; nothing here touches storage.
package workflow

import (
	"github.com/medwave/review-backend/internal/domain"
)

// Rule is one legal edge in a kind's workflow: the stage an action leads to
// and the roles allowed to trigger it.
type Rule struct {
	NextStage    domain.Stage
	AllowedRoles []domain.Role
}

// transitionTable maps stage → action → rule for one content kind.
// A missing (stage, action) combination is illegal by absence.
type transitionTable map[domain.Stage]map[domain.Action]Rule

// Rejection targets are one stage back along the kind's own review order,
// not DRAFT universally. The two kinds order their review stages
// differently on purpose: scripts are checked by medical affairs first,
// videos by the brand team first.
var scriptTransitions = transitionTable{
	domain.StageDraft: {
		domain.ActionSubmit:  {NextStage: domain.StageMedicalReview, AllowedRoles: []domain.Role{domain.RoleAgency, domain.RoleSuperAdmin}},
		domain.ActionArchive: {NextStage: domain.StageArchived, AllowedRoles: []domain.Role{domain.RoleAgency, domain.RoleSuperAdmin}},
	},
	domain.StageMedicalReview: {
		domain.ActionApprove: {NextStage: domain.StageBrandReview, AllowedRoles: []domain.Role{domain.RoleMedicalAffairs, domain.RoleSuperAdmin}},
		domain.ActionReject:  {NextStage: domain.StageDraft, AllowedRoles: []domain.Role{domain.RoleMedicalAffairs, domain.RoleSuperAdmin}},
	},
	domain.StageBrandReview: {
		domain.ActionApprove: {NextStage: domain.StageDoctorReview, AllowedRoles: []domain.Role{domain.RoleBrandTeam, domain.RoleSuperAdmin}},
		domain.ActionReject:  {NextStage: domain.StageMedicalReview, AllowedRoles: []domain.Role{domain.RoleBrandTeam, domain.RoleSuperAdmin}},
	},
	domain.StageDoctorReview: {
		domain.ActionApprove: {NextStage: domain.StageApproved, AllowedRoles: []domain.Role{domain.RoleDoctor, domain.RoleSuperAdmin}},
		domain.ActionReject:  {NextStage: domain.StageBrandReview, AllowedRoles: []domain.Role{domain.RoleDoctor, domain.RoleSuperAdmin}},
	},
}

var videoTransitions = transitionTable{
	domain.StageDraft: {
		domain.ActionSubmit:  {NextStage: domain.StageBrandReview, AllowedRoles: []domain.Role{domain.RoleAgency, domain.RoleSuperAdmin}},
		domain.ActionArchive: {NextStage: domain.StageArchived, AllowedRoles: []domain.Role{domain.RoleAgency, domain.RoleSuperAdmin}},
	},
	domain.StageBrandReview: {
		domain.ActionApprove: {NextStage: domain.StageMedicalReview, AllowedRoles: []domain.Role{domain.RoleBrandTeam, domain.RoleSuperAdmin}},
		domain.ActionReject:  {NextStage: domain.StageDraft, AllowedRoles: []domain.Role{domain.RoleBrandTeam, domain.RoleSuperAdmin}},
	},
	domain.StageMedicalReview: {
		domain.ActionApprove: {NextStage: domain.StageDoctorReview, AllowedRoles: []domain.Role{domain.RoleMedicalAffairs, domain.RoleSuperAdmin}},
		domain.ActionReject:  {NextStage: domain.StageBrandReview, AllowedRoles: []domain.Role{domain.RoleMedicalAffairs, domain.RoleSuperAdmin}},
	},
	domain.StageDoctorReview: {
		domain.ActionApprove: {NextStage: domain.StageApproved, AllowedRoles: []domain.Role{domain.RoleDoctor, domain.RoleSuperAdmin}},
		domain.ActionReject:  {NextStage: domain.StageMedicalReview, AllowedRoles: []domain.Role{domain.RoleDoctor, domain.RoleSuperAdmin}},
	},
	domain.StageLocked: {
		domain.ActionPublish: {NextStage: domain.StagePublished, AllowedRoles: []domain.Role{domain.RolePublisher, domain.RoleSuperAdmin}},
	},
}

// tableFor returns the transition table for a kind.
func tableFor(kind domain.ContentKind) transitionTable {
	if kind == domain.ContentKindVideo {
		return videoTransitions
	}
	return scriptTransitions
}

// reviewerRoleByStage maps a claimable review stage to the role that works
// it. Derived from the same source as the tables' allowed-role sets; kept
// separate because claiming is not a transition.
var reviewerRoleByStage = map[domain.Stage]domain.Role{
	domain.StageMedicalReview: domain.RoleMedicalAffairs,
	domain.StageBrandReview:   domain.RoleBrandTeam,
	domain.StageDoctorReview:  domain.RoleDoctor,
}

// ReviewerRoleFor returns the reviewer role responsible for a stage, or
// false when the stage has no reviewer-role mapping.
func ReviewerRoleFor(stage domain.Stage) (domain.Role, bool) {
	role, ok := reviewerRoleByStage[stage]
	return role, ok
}

// CanReview reports whether a role may claim and review items at the given
// stage. SUPER_ADMIN may review at any claimable stage.
func CanReview(role domain.Role, stage domain.Stage) bool {
	want, ok := reviewerRoleByStage[stage]
	if !ok {
		return false
	}
	return role == want || role == domain.RoleSuperAdmin
}

// ReviewStagesFor returns the review stages a role may act on for a kind,
// in the kind's review order. SUPER_ADMIN gets every review stage.
func ReviewStagesFor(kind domain.ContentKind, role domain.Role) []domain.Stage {
	order := []domain.Stage{domain.StageMedicalReview, domain.StageBrandReview, domain.StageDoctorReview}
	if kind == domain.ContentKindVideo {
		order = []domain.Stage{domain.StageBrandReview, domain.StageMedicalReview, domain.StageDoctorReview}
	}

	var stages []domain.Stage
	for _, st := range order {
		if CanReview(role, st) {
			stages = append(stages, st)
		}
	}
	return stages
}
