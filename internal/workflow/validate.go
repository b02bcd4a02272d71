package workflow

import (
	"slices"

	"github.com/medwave/review-backend/internal/domain"
)

// Validate resolves a requested action against the kind's transition table.
// It returns the stage the item moves to, a *domain.TransitionError when the
// (stage, action) combination is undefined, or a *domain.ForbiddenError when
// the combination exists but the actor's role is outside the allowed set.
func Validate(kind domain.ContentKind, current domain.Stage, action domain.Action, actorRole domain.Role) (domain.Stage, error) {
	rule, err := Lookup(kind, current, action)
	if err != nil {
		return "", err
	}

	if !slices.Contains(rule.AllowedRoles, actorRole) {
		return "", &domain.ForbiddenError{
			Action:       action,
			ActorRole:    actorRole,
			AllowedRoles: rule.AllowedRoles,
		}
	}

	return rule.NextStage, nil
}

// Lookup returns the rule for a (stage, action) pair without checking roles.
func Lookup(kind domain.ContentKind, current domain.Stage, action domain.Action) (Rule, error) {
	actions, ok := tableFor(kind)[current]
	if !ok {
		return Rule{}, &domain.TransitionError{Kind: kind, Stage: current, Action: action}
	}

	rule, ok := actions[action]
	if !ok {
		return Rule{}, &domain.TransitionError{Kind: kind, Stage: current, Action: action}
	}

	return rule, nil
}
