package domain

// ContentKind identifies the kind of reviewable content.
type ContentKind string

const (
	ContentKindScript ContentKind = "SCRIPT"
	ContentKindVideo  ContentKind = "VIDEO"
)

func (k ContentKind) String() string { return string(k) }

func (k ContentKind) IsValid() bool {
	switch k {
	case ContentKindScript, ContentKindVideo:
		return true
	}
	return false
}

// Stage represents the workflow position of a content item.
// The set of legal stages differs per kind: scripts never reach PUBLISHED,
// and the review order differs between the two kinds (scripts start with
// medical review, videos with brand review).
type Stage string

const (
	StageDraft         Stage = "DRAFT"
	StageMedicalReview Stage = "MEDICAL_REVIEW"
	StageBrandReview   Stage = "BRAND_REVIEW"
	StageDoctorReview  Stage = "DOCTOR_REVIEW"
	StageApproved      Stage = "APPROVED"
	StageLocked        Stage = "LOCKED"
	StagePublished     Stage = "PUBLISHED"
	StageArchived      Stage = "ARCHIVED"
)

func (s Stage) String() string { return string(s) }

func (s Stage) IsValid() bool {
	switch s {
	case StageDraft, StageMedicalReview, StageBrandReview, StageDoctorReview,
		StageApproved, StageLocked, StagePublished, StageArchived:
		return true
	}
	return false
}

// IsReviewStage reports whether items at this stage are claimable by a reviewer.
func (s Stage) IsReviewStage() bool {
	switch s {
	case StageMedicalReview, StageBrandReview, StageDoctorReview:
		return true
	}
	return false
}

// Action is a requested workflow transition trigger.
type Action string

const (
	ActionSubmit  Action = "SUBMIT"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionLock    Action = "LOCK"
	ActionUnlock  Action = "UNLOCK"
	ActionPublish Action = "PUBLISH"
	ActionArchive Action = "ARCHIVE"
)

func (a Action) String() string { return string(a) }

func (a Action) IsValid() bool {
	switch a {
	case ActionSubmit, ActionApprove, ActionReject, ActionLock,
		ActionUnlock, ActionPublish, ActionArchive:
		return true
	}
	return false
}

// Role is the workflow role an actor holds. Role→permission resolution for
// the HTTP layer lives upstream; the engine only checks the narrower
// stage-role mapping defined by the transition tables.
type Role string

const (
	RoleAgency          Role = "AGENCY"
	RoleMedicalAffairs  Role = "MEDICAL_AFFAIRS"
	RoleBrandTeam       Role = "BRAND_TEAM"
	RoleDoctor          Role = "DOCTOR"
	RoleContentApprover Role = "CONTENT_APPROVER"
	RolePublisher       Role = "PUBLISHER"
	RoleSuperAdmin      Role = "SUPER_ADMIN"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleAgency, RoleMedicalAffairs, RoleBrandTeam, RoleDoctor,
		RoleContentApprover, RolePublisher, RoleSuperAdmin:
		return true
	}
	return false
}

// ReviewDecision is the outcome recorded by a reviewer.
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "APPROVED"
	ReviewDecisionRejected ReviewDecision = "REJECTED"
)

func (d ReviewDecision) String() string { return string(d) }

func (d ReviewDecision) IsValid() bool {
	switch d {
	case ReviewDecisionApproved, ReviewDecisionRejected:
		return true
	}
	return false
}

// TopicStatus is the coarse progress status of a topic, advanced as a side
// effect of item transitions.
type TopicStatus string

const (
	TopicStatusNew        TopicStatus = "NEW"
	TopicStatusInProgress TopicStatus = "IN_PROGRESS"
	TopicStatusCompleted  TopicStatus = "COMPLETED"
)

func (s TopicStatus) String() string { return string(s) }

func (s TopicStatus) IsValid() bool {
	switch s {
	case TopicStatusNew, TopicStatusInProgress, TopicStatusCompleted:
		return true
	}
	return false
}

// EntityType identifies the kind of entity an audit record refers to.
type EntityType string

const (
	EntityTypeScript EntityType = "SCRIPT"
	EntityTypeVideo  EntityType = "VIDEO"
	EntityTypeTopic  EntityType = "TOPIC"
)

func (t EntityType) String() string { return string(t) }

func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeScript, EntityTypeVideo, EntityTypeTopic:
		return true
	}
	return false
}

// EntityTypeForKind maps a content kind to its audit entity type.
func EntityTypeForKind(kind ContentKind) EntityType {
	if kind == ContentKindVideo {
		return EntityTypeVideo
	}
	return EntityTypeScript
}
