package feedback

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("feedback: item not found")
	ErrInvalidProjectID   = errors.New("feedback: invalid project ID")
	ErrInvalidTitle       = errors.New("feedback: title is required")
	ErrInvalidStatus      = errors.New("feedback: invalid status")
	ErrInvalidTransition  = errors.New("feedback: invalid status transition")
	ErrAlreadyLinked      = errors.New("feedback: item already linked to this tracker")
	ErrUnknownProvider    = errors.New("feedback: unknown tracker provider")
	ErrCommentBodyMissing = errors.New("feedback: comment body is required")
	ErrInvalidVoter       = errors.New("feedback: invalid voter ID")
)

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status represents the triage status of a feedback item
type Status string

const (
	// StatusPending indicates newly submitted feedback awaiting triage
	StatusPending Status = "PENDING"
	// StatusApproved indicates feedback accepted onto the roadmap
	StatusApproved Status = "APPROVED"
	// StatusInProgress indicates feedback being worked on
	StatusInProgress Status = "IN_PROGRESS"
	// StatusTestflight indicates feedback shipped to beta testers
	StatusTestflight Status = "TESTFLIGHT"
	// StatusCompleted indicates feedback fully shipped (terminal)
	StatusCompleted Status = "COMPLETED"
	// StatusRejected indicates feedback declined (terminal)
	StatusRejected Status = "REJECTED"
)

// IsValid returns true if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusInProgress,
		StatusTestflight, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for statuses no further transition leaves
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// DisplayName returns a human-readable name for the status
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusInProgress:
		return "In Progress"
	case StatusTestflight:
		return "Testflight"
	case StatusCompleted:
		return "Completed"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// rank gives the position of a status in the triage pipeline.
// Terminal statuses share the final rank.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusApproved:
		return 1
	case StatusInProgress:
		return 2
	case StatusTestflight:
		return 3
	case StatusCompleted, StatusRejected:
		return 4
	default:
		return -1
	}
}

// CanTransitionTo reports whether a status change is allowed.
// The pipeline moves forward only; rejection is allowed from any
// non-terminal status.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == StatusRejected {
		return true
	}
	return next.rank() > s.rank()
}

// ---------------------------------------------------------------------------
// TrackerLink
// ---------------------------------------------------------------------------

// TrackerLink is the (url, external id) pair recorded on a feedback item
// once a work item has been created on an external tracker.
type TrackerLink struct {
	// URL is the browsable location of the external work item
	URL string
	// ExternalID is the tracker-native identifier used for follow-up calls
	ExternalID string
}

// IsSet returns true once a link has been recorded
func (l TrackerLink) IsSet() bool {
	return l.ExternalID != ""
}

// ---------------------------------------------------------------------------
// Item
// ---------------------------------------------------------------------------

// Item represents a feedback item submitted by an end user.
// The sync engine reads title/description/category/votes/status and owns
// only the per-provider tracker links; everything else belongs to the
// feedback CRUD subsystem.
type Item struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	AuthorID    uuid.UUID
	AuthorEmail string
	Title       string
	Description string
	Category    string
	Status      Status
	VoteCount   int
	// Links holds at most one tracker link per provider; once set for a
	// provider it is never overwritten by the engine.
	Links     map[string]TrackerLink
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem creates a new feedback item in the pending state
func NewItem(projectID, authorID uuid.UUID, title, description, category string) (*Item, error) {
	if projectID == uuid.Nil {
		return nil, ErrInvalidProjectID
	}
	if title == "" {
		return nil, ErrInvalidTitle
	}

	now := time.Now()
	return &Item{
		ID:          uuid.New(),
		ProjectID:   projectID,
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      StatusPending,
		VoteCount:   0,
		Links:       make(map[string]TrackerLink),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Link returns the tracker link for a provider, if one has been recorded
func (i *Item) Link(provider string) (TrackerLink, bool) {
	if i.Links == nil {
		return TrackerLink{}, false
	}
	link, ok := i.Links[provider]
	if !ok || !link.IsSet() {
		return TrackerLink{}, false
	}
	return link, true
}

// SetLink records a tracker link for a provider. A second call for the
// same provider fails with ErrAlreadyLinked; links are write-once.
func (i *Item) SetLink(provider string, link TrackerLink) error {
	if _, ok := i.Link(provider); ok {
		return ErrAlreadyLinked
	}
	if i.Links == nil {
		i.Links = make(map[string]TrackerLink)
	}
	i.Links[provider] = link
	i.UpdatedAt = time.Now()
	return nil
}

// ChangeStatus transitions the item to a new status
func (i *Item) ChangeStatus(next Status) error {
	if !next.IsValid() {
		return ErrInvalidStatus
	}
	if !i.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	i.Status = next
	i.UpdatedAt = time.Now()
	return nil
}

// ---------------------------------------------------------------------------
// Comment / Vote
// ---------------------------------------------------------------------------

// Comment represents a comment left on a feedback item
type Comment struct {
	ID         uuid.UUID
	FeedbackID uuid.UUID
	AuthorID   uuid.UUID
	Body       string
	IsAdmin    bool
	CreatedAt  time.Time
}

// NewComment creates a new comment on a feedback item
func NewComment(feedbackID, authorID uuid.UUID, body string, isAdmin bool) (*Comment, error) {
	if body == "" {
		return nil, ErrCommentBodyMissing
	}
	return &Comment{
		ID:         uuid.New(),
		FeedbackID: feedbackID,
		AuthorID:   authorID,
		Body:       body,
		IsAdmin:    isAdmin,
		CreatedAt:  time.Now(),
	}, nil
}

// Vote represents a single user's vote on a feedback item
type Vote struct {
	ID         uuid.UUID
	FeedbackID uuid.UUID
	VoterID    uuid.UUID
	CreatedAt  time.Time
}

// NewVote creates a vote by a user on a feedback item
func NewVote(feedbackID, voterID uuid.UUID) (*Vote, error) {
	if voterID == uuid.Nil {
		return nil, ErrInvalidVoter
	}
	return &Vote{
		ID:         uuid.New(),
		FeedbackID: feedbackID,
		VoterID:    voterID,
		CreatedAt:  time.Now(),
	}, nil
}
