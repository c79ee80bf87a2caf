package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hearback/backend/internal/domain/feedback"
	"github.com/hearback/backend/internal/domain/tracker"
)

// FeedbackItemModel is the persistence model for the feedback Item entity.
// Tracker links are flattened into one url/id column pair per provider so
// the write-once guarantee can be enforced with a conditional UPDATE.
type FeedbackItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProjectID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_feedback_project,priority:1"`
	AuthorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AuthorEmail string          `gorm:"type:varchar(255)"`
	Title       string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text"`
	Category    string          `gorm:"type:varchar(50);index"`
	Status      feedback.Status `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	VoteCount   int             `gorm:"not null;default:0"`

	GitHubLinkURL  string `gorm:"type:varchar(500);column:github_link_url"`
	GitHubLinkID   string `gorm:"type:varchar(100);column:github_link_id"`
	ClickUpLinkURL string `gorm:"type:varchar(500);column:clickup_link_url"`
	ClickUpLinkID  string `gorm:"type:varchar(100);column:clickup_link_id"`
	NotionLinkURL  string `gorm:"type:varchar(500);column:notion_link_url"`
	NotionLinkID   string `gorm:"type:varchar(100);column:notion_link_id"`
	MondayLinkURL  string `gorm:"type:varchar(500);column:monday_link_url"`
	MondayLinkID   string `gorm:"type:varchar(100);column:monday_link_id"`
	LinearLinkURL  string `gorm:"type:varchar(500);column:linear_link_url"`
	LinearLinkID   string `gorm:"type:varchar(100);column:linear_link_id"`
	TrelloLinkURL  string `gorm:"type:varchar(500);column:trello_link_url"`
	TrelloLinkID   string `gorm:"type:varchar(100);column:trello_link_id"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedbackItemModel) TableName() string {
	return "feedback_items"
}

// linkColumns maps a provider code onto its column pair. The whitelist
// keeps provider strings out of raw SQL.
func linkColumns(provider tracker.Code) (urlCol, idCol string, ok bool) {
	switch provider {
	case tracker.CodeGitHub:
		return "github_link_url", "github_link_id", true
	case tracker.CodeClickUp:
		return "clickup_link_url", "clickup_link_id", true
	case tracker.CodeNotion:
		return "notion_link_url", "notion_link_id", true
	case tracker.CodeMonday:
		return "monday_link_url", "monday_link_id", true
	case tracker.CodeLinear:
		return "linear_link_url", "linear_link_id", true
	case tracker.CodeTrello:
		return "trello_link_url", "trello_link_id", true
	default:
		return "", "", false
	}
}

// LinkColumns exposes the provider-to-column mapping to the repository
func LinkColumns(provider tracker.Code) (urlCol, idCol string, ok bool) {
	return linkColumns(provider)
}

// ToDomain converts the persistence model to a domain Item entity
func (m *FeedbackItemModel) ToDomain() *feedback.Item {
	links := make(map[string]feedback.TrackerLink)
	for code, pair := range map[tracker.Code][2]string{
		tracker.CodeGitHub:  {m.GitHubLinkURL, m.GitHubLinkID},
		tracker.CodeClickUp: {m.ClickUpLinkURL, m.ClickUpLinkID},
		tracker.CodeNotion:  {m.NotionLinkURL, m.NotionLinkID},
		tracker.CodeMonday:  {m.MondayLinkURL, m.MondayLinkID},
		tracker.CodeLinear:  {m.LinearLinkURL, m.LinearLinkID},
		tracker.CodeTrello:  {m.TrelloLinkURL, m.TrelloLinkID},
	} {
		if pair[1] != "" {
			links[code.String()] = feedback.TrackerLink{URL: pair[0], ExternalID: pair[1]}
		}
	}

	return &feedback.Item{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		AuthorID:    m.AuthorID,
		AuthorEmail: m.AuthorEmail,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		Status:      m.Status,
		VoteCount:   m.VoteCount,
		Links:       links,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Item entity
func (m *FeedbackItemModel) FromDomain(item *feedback.Item) {
	m.ID = item.ID
	m.ProjectID = item.ProjectID
	m.AuthorID = item.AuthorID
	m.AuthorEmail = item.AuthorEmail
	m.Title = item.Title
	m.Description = item.Description
	m.Category = item.Category
	m.Status = item.Status
	m.VoteCount = item.VoteCount
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt

	set := func(urlDst, idDst *string, code tracker.Code) {
		if link, ok := item.Link(code.String()); ok {
			*urlDst = link.URL
			*idDst = link.ExternalID
		}
	}
	set(&m.GitHubLinkURL, &m.GitHubLinkID, tracker.CodeGitHub)
	set(&m.ClickUpLinkURL, &m.ClickUpLinkID, tracker.CodeClickUp)
	set(&m.NotionLinkURL, &m.NotionLinkID, tracker.CodeNotion)
	set(&m.MondayLinkURL, &m.MondayLinkID, tracker.CodeMonday)
	set(&m.LinearLinkURL, &m.LinearLinkID, tracker.CodeLinear)
	set(&m.TrelloLinkURL, &m.TrelloLinkID, tracker.CodeTrello)
}

// FeedbackItemModelFromDomain creates a new persistence model from a
// domain Item entity
func FeedbackItemModelFromDomain(item *feedback.Item) *FeedbackItemModel {
	m := &FeedbackItemModel{}
	m.FromDomain(item)
	return m
}

// FeedbackCommentModel is the persistence model for feedback comments
type FeedbackCommentModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	FeedbackID uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null"`
	Body       string    `gorm:"type:text;not null"`
	IsAdmin    bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedbackCommentModel) TableName() string {
	return "feedback_comments"
}

// ToDomain converts the persistence model to a domain Comment entity
func (m *FeedbackCommentModel) ToDomain() *feedback.Comment {
	return &feedback.Comment{
		ID:         m.ID,
		FeedbackID: m.FeedbackID,
		AuthorID:   m.AuthorID,
		Body:       m.Body,
		IsAdmin:    m.IsAdmin,
		CreatedAt:  m.CreatedAt,
	}
}

// FeedbackCommentModelFromDomain creates a persistence model from a
// domain Comment entity
func FeedbackCommentModelFromDomain(c *feedback.Comment) *FeedbackCommentModel {
	return &FeedbackCommentModel{
		ID:         c.ID,
		FeedbackID: c.FeedbackID,
		AuthorID:   c.AuthorID,
		Body:       c.Body,
		IsAdmin:    c.IsAdmin,
		CreatedAt:  c.CreatedAt,
	}
}

// FeedbackVoteModel is the persistence model for feedback votes. The
// unique index makes a second vote by the same user a constraint error.
type FeedbackVoteModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	FeedbackID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_feedback_voter,priority:1"`
	VoterID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_vote_feedback_voter,priority:2"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FeedbackVoteModel) TableName() string {
	return "feedback_votes"
}

// ToDomain converts the persistence model to a domain Vote entity
func (m *FeedbackVoteModel) ToDomain() *feedback.Vote {
	return &feedback.Vote{
		ID:         m.ID,
		FeedbackID: m.FeedbackID,
		VoterID:    m.VoterID,
		CreatedAt:  m.CreatedAt,
	}
}

// FeedbackVoteModelFromDomain creates a persistence model from a domain
// Vote entity
func FeedbackVoteModelFromDomain(v *feedback.Vote) *FeedbackVoteModel {
	return &FeedbackVoteModel{
		ID:         v.ID,
		FeedbackID: v.FeedbackID,
		VoterID:    v.VoterID,
		CreatedAt:  v.CreatedAt,
	}
}
