package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentItem is a reviewable item (script or video) moving through the
// workflow. The claim pair (AssignedReviewerID, AssignedAt) is either both
// set or both nil; every stage change clears it. The lock pair is set only
// while Stage == LOCKED. The publish trio is set only for videos, on PUBLISH.
type ContentItem struct {
	ID      uuid.UUID
	TopicID uuid.UUID
	Kind    ContentKind
	Title   string
	Stage   Stage

	// Version is assigned per topic at creation by the upload flow and is
	// never changed by the workflow.
	Version int

	// StorageKey points at the uploaded artifact; owned by the upload flow.
	StorageKey *string

	AssignedReviewerID *uuid.UUID
	AssignedAt         *time.Time

	LockedByID *uuid.UUID
	LockedAt   *time.Time

	PublishedByID *uuid.UUID
	PublishedAt   *time.Time
	DeepLink      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsClaimed reports whether a reviewer currently holds the item.
func (c *ContentItem) IsClaimed() bool {
	return c.AssignedReviewerID != nil
}

// ClaimedBy reports whether the given reviewer holds the item.
func (c *ContentItem) ClaimedBy(reviewerID uuid.UUID) bool {
	return c.AssignedReviewerID != nil && *c.AssignedReviewerID == reviewerID
}

// Topic groups content items and carries a coarse progress status. The
// workflow engine mutates Status only; everything else is owned upstream.
type Topic struct {
	ID        uuid.UUID
	Name      string
	Status    TopicStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewRecord is an immutable review decision for one item at one stage.
// Created only on APPROVE/REJECT, never updated.
type ReviewRecord struct {
	ID           uuid.UUID
	ItemID       uuid.UUID
	Kind         ContentKind
	ReviewerID   uuid.UUID
	ReviewerRole Role
	Decision     ReviewDecision
	Comments     *string
	CreatedAt    time.Time
}

// AuditRecord is an immutable, append-only record of one mutating workflow
// operation. It is the sole durable record of workflow history beyond
// current state.
type AuditRecord struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Action     string
	EntityType EntityType
	EntityID   *uuid.UUID
	Changes    map[string]any
	IP         *string
	UserAgent  *string
	CreatedAt  time.Time
}

// VideoAnalytics is the zero-initialized analytics side-record created when
// a video is published. Counters are advanced by an external collector.
type VideoAnalytics struct {
	VideoID   uuid.UUID
	Views     int64
	Likes     int64
	Shares    int64
	WatchMs   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// User is the reviewer/actor identity as the engine sees it. User CRUD and
// authentication live upstream; the engine reads names for diagnostics.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Queue is the point-in-time view a reviewer role gets over one content kind.
type Queue struct {
	// Available holds unclaimed items at the stages the role may act on,
	// oldest first.
	Available []*ContentItem
	// Mine holds the caller's claimed items, most recently claimed first.
	Mine []*ContentItem
}
