package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LeadSource is where a lead came from. Values outside the known set are
// kept verbatim and score as the default source.
type LeadSource string

const (
	SourceReferral       LeadSource = "referral"
	SourceLinkedIn       LeadSource = "linkedin"
	SourceWebsite        LeadSource = "website"
	SourceGoogleAds      LeadSource = "google_ads"
	SourceFacebookAds    LeadSource = "facebook_ads"
	SourceEmailMarketing LeadSource = "email_marketing"
	SourceColdOutreach   LeadSource = "cold_outreach"
	SourceOther          LeadSource = "other"
)

// Known reports whether s is one of the recognized sources.
func (s LeadSource) Known() bool {
	switch s.normalized() {
	case SourceReferral, SourceLinkedIn, SourceWebsite, SourceGoogleAds,
		SourceFacebookAds, SourceEmailMarketing, SourceColdOutreach, SourceOther:
		return true
	}
	return false
}

func (s LeadSource) normalized() LeadSource {
	return LeadSource(strings.ToLower(strings.TrimSpace(string(s))))
}

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) normalized() Priority {
	return Priority(strings.ToLower(strings.TrimSpace(string(p))))
}

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

type Lead struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	CompanyName    string     `json:"company_name,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	Source         LeadSource `json:"source,omitempty"`
	Priority       Priority   `json:"priority,omitempty"`
	Status         LeadStatus `json:"status"`
	Score          int        `json:"score"`
	ExpectedValue  *float64   `json:"expected_value,omitempty"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func NewLead(orgID, userID, name string) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         userID,
		Name:           name,
		Status:         LeadStatusNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Attributes returns the subset of fields the scorer consumes.
func (l *Lead) Attributes() LeadAttributes {
	return LeadAttributes{
		Source:      l.Source,
		JobTitle:    l.JobTitle,
		Priority:    l.Priority,
		CompanyName: l.CompanyName,
		Email:       l.Email,
		Phone:       l.Phone,
	}
}

// LeadPatch is a partial update. Nil fields are left untouched.
type LeadPatch struct {
	Name          *string
	Email         *string
	Phone         *string
	CompanyName   *string
	JobTitle      *string
	Source        *LeadSource
	Priority      *Priority
	Status        *LeadStatus
	ExpectedValue *float64
	AssignedTo    *string
	Notes         *string
}

// TouchesScore reports whether the patch changes any field the scorer reads.
func (p LeadPatch) TouchesScore() bool {
	return p.Source != nil || p.JobTitle != nil || p.Priority != nil ||
		p.CompanyName != nil || p.Email != nil || p.Phone != nil
}

// Empty reports whether the patch sets nothing.
func (p LeadPatch) Empty() bool {
	return !p.TouchesScore() && p.Name == nil && p.Status == nil &&
		p.ExpectedValue == nil && p.AssignedTo == nil && p.Notes == nil
}

// Apply merges the patch into a copy of l.
func (p LeadPatch) Apply(l Lead) Lead {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.CompanyName != nil {
		l.CompanyName = *p.CompanyName
	}
	if p.JobTitle != nil {
		l.JobTitle = *p.JobTitle
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Priority != nil {
		l.Priority = *p.Priority
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.ExpectedValue != nil {
		v := *p.ExpectedValue
		l.ExpectedValue = &v
	}
	if p.AssignedTo != nil {
		l.AssignedTo = *p.AssignedTo
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	return l
}

type LeadFilter struct {
	OrganizationID string
	Status         LeadStatus
	Source         LeadSource
	MinScore       int
	Limit          int
	Offset         int
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, orgID, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	Update(ctx context.Context, orgID, id string, patch LeadPatch) error
	UpdateScore(ctx context.Context, id string, score int) error
	UpdateStatus(ctx context.Context, id string, status LeadStatus) error
}
