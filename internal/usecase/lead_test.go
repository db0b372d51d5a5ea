package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

func newLeadUseCases(repo *MockLeadRepository, activities ActivityLogger) (*CreateLeadUseCase, *UpdateLeadUseCase) {
	logger := zap.NewNop()
	scorer := NewLeadScorer(repo, nil, logger)
	return NewCreateLeadUseCase(repo, scorer, activities, logger),
		NewUpdateLeadUseCase(repo, scorer, activities, logger)
}

func TestCreateLead_ScoresAndLogs(t *testing.T) {
	repo := new(MockLeadRepository)
	activities := new(MockActivityLogger)
	create, _ := newLeadUseCases(repo, activities)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.OrganizationID == "org-1" && l.UserID == "user-1" && l.Status == entity.LeadStatusNew
	})).Return(nil)
	repo.On("UpdateScore", mock.Anything, mock.AnythingOfType("string"), 100).Return(nil)
	activities.On("Log", mock.Anything, mock.MatchedBy(func(a *entity.Activity) bool {
		return a.Action == entity.ActivityLeadCreated && a.EntityType == "lead"
	})).Return(nil)

	out, err := create.Execute(context.Background(), testActor, CreateLeadInput{
		Name:        "  Ana Souza ",
		Email:       "ana@acme.io",
		Phone:       "+5511988887777",
		CompanyName: "Acme",
		JobTitle:    "CEO",
		Source:      "referral",
		Priority:    "URGENT",
	})

	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", out.Lead.Name)
	assert.Equal(t, entity.PriorityUrgent, out.Lead.Priority)
	assert.Equal(t, 100, out.Lead.Score)
	assert.Empty(t, out.Degraded)
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestCreateLead_ScoreFailureIsDegraded(t *testing.T) {
	repo := new(MockLeadRepository)
	create, _ := newLeadUseCases(repo, nil)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateScore", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("timeout"))

	out, err := create.Execute(context.Background(), testActor, CreateLeadInput{Name: "Bob", Source: "website"})

	require.NoError(t, err)
	assert.Equal(t, 0, out.Lead.Score)
	require.Len(t, out.Degraded, 1)
	assert.Equal(t, "score_lead", out.Degraded[0].Step)
}

func TestCreateLead_Validation(t *testing.T) {
	repo := new(MockLeadRepository)
	create, _ := newLeadUseCases(repo, nil)

	_, err := create.Execute(context.Background(), testActor, CreateLeadInput{Email: "not-an-email"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLead_PersistenceFailure(t *testing.T) {
	repo := new(MockLeadRepository)
	create, _ := newLeadUseCases(repo, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("conn refused"))

	_, err := create.Execute(context.Background(), testActor, CreateLeadInput{Name: "Bob"})

	assert.True(t, IsPersistenceError(err))
	repo.AssertNotCalled(t, "UpdateScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLead_RescoresWhenScoreFieldChanges(t *testing.T) {
	repo := new(MockLeadRepository)
	_, update := newLeadUseCases(repo, nil)

	stored := &entity.Lead{ID: "lead-1", OrganizationID: "org-1", Name: "Ana", Source: entity.SourceWebsite, Score: 15}
	repo.On("FindByID", mock.Anything, "org-1", "lead-1").Return(stored, nil)
	repo.On("Update", mock.Anything, "org-1", "lead-1", mock.Anything).Return(nil)
	// website 15 + director 15 + default priority 10
	repo.On("UpdateScore", mock.Anything, "lead-1", 40).Return(nil)

	title := "Director of Sales"
	out, err := update.Execute(context.Background(), testActor, "lead-1", UpdateLeadInput{JobTitle: &title})

	require.NoError(t, err)
	assert.Equal(t, 40, out.Lead.Score)
	assert.Equal(t, "Director of Sales", out.Lead.JobTitle)
	repo.AssertExpectations(t)
}

func TestUpdateLead_NoRescoreForOtherFields(t *testing.T) {
	repo := new(MockLeadRepository)
	_, update := newLeadUseCases(repo, nil)

	stored := &entity.Lead{ID: "lead-1", OrganizationID: "org-1", Name: "Ana", Score: 42}
	repo.On("FindByID", mock.Anything, "org-1", "lead-1").Return(stored, nil)
	repo.On("Update", mock.Anything, "org-1", "lead-1", mock.Anything).Return(nil)

	notes := "call back on monday"
	out, err := update.Execute(context.Background(), testActor, "lead-1", UpdateLeadInput{Notes: &notes})

	require.NoError(t, err)
	assert.Equal(t, 42, out.Lead.Score)
	repo.AssertNotCalled(t, "UpdateScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLead_NotFound(t *testing.T) {
	repo := new(MockLeadRepository)
	_, update := newLeadUseCases(repo, nil)
	repo.On("FindByID", mock.Anything, "org-1", "missing").Return(nil, entity.ErrNotFound)

	name := "X"
	_, err := update.Execute(context.Background(), testActor, "missing", UpdateLeadInput{Name: &name})

	assert.True(t, IsNotFoundError(err))
}

func TestUpdateLead_EmptyPatch(t *testing.T) {
	repo := new(MockLeadRepository)
	_, update := newLeadUseCases(repo, nil)

	_, err := update.Execute(context.Background(), testActor, "lead-1", UpdateLeadInput{})

	assert.True(t, IsValidationError(err))
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadQuery_ListEmpty(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewLeadQueryUseCase(repo)
	repo.On("List", mock.Anything, entity.LeadFilter{OrganizationID: "org-1", Status: entity.LeadStatusQualified, MinScore: 50}).
		Return(nil, nil)

	leads, err := uc.List(context.Background(), testActor, ListLeadsInput{Status: "qualified", MinScore: 50})

	require.NoError(t, err)
	assert.NotNil(t, leads)
	assert.Empty(t, leads)
}

func TestLeadQuery_ListRejectsBadStatus(t *testing.T) {
	uc := NewLeadQueryUseCase(new(MockLeadRepository))

	_, err := uc.List(context.Background(), testActor, ListLeadsInput{Status: "archived"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestCaptureLeads_CreatesFromForm(t *testing.T) {
	repo := new(MockLeadRepository)
	create, _ := newLeadUseCases(repo, nil)
	owner := entity.Actor{UserID: "owner-1", OrganizationID: "org-9"}
	uc := NewCaptureLeadsUseCase(create, owner, zap.NewNop())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.OrganizationID == "org-9" && l.UserID == "owner-1"
	})).Return(nil)
	repo.On("UpdateScore", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := uc.Execute(context.Background(), "whatsapp", []byte(`{
		"entry": [{"changes": [{"field": "messages", "value": {
			"contacts": [{"wa_id": "5511999999999", "profile": {"name": "Maria Lima"}}],
			"messages": [{"from": "5511999999999", "type": "text", "text": {"body": "hi"}}]
		}}]}]
	}`))

	require.NoError(t, err)
	require.Len(t, out.Created, 1)
	assert.Equal(t, "Maria Lima", out.Created[0].Lead.Name)
	assert.Empty(t, out.Failed)
}

func TestCaptureLeads_NoLeadIsEmptySuccess(t *testing.T) {
	repo := new(MockLeadRepository)
	create, _ := newLeadUseCases(repo, nil)
	uc := NewCaptureLeadsUseCase(create, testActor, zap.NewNop())

	out, err := uc.Execute(context.Background(), "whatsapp", []byte(`{"entry":[{"changes":[{"field":"messages","value":{"statuses":[{"id":"x"}]}}]}]}`))

	require.NoError(t, err)
	assert.Empty(t, out.Created)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCaptureLeads_UnsupportedPlatform(t *testing.T) {
	repo := new(MockLeadRepository)
	create, _ := newLeadUseCases(repo, nil)
	uc := NewCaptureLeadsUseCase(create, testActor, zap.NewNop())

	_, err := uc.Execute(context.Background(), "telegram", []byte(`{}`))

	assert.True(t, IsValidationError(err))
}

func TestLeadScorer_LogsUnrecognizedSource(t *testing.T) {
	repo := new(MockLeadRepository)
	core, logs := observer.New(zap.InfoLevel)
	scorer := NewLeadScorer(repo, nil, zap.New(core))
	lead := &entity.Lead{ID: "lead-1", Source: "tiktok"}
	repo.On("UpdateScore", mock.Anything, "lead-1", 15).Return(nil)

	degraded := scorer.Rescore(context.Background(), lead)

	assert.Nil(t, degraded)
	assert.Equal(t, 15, lead.Score)
	entries := logs.FilterMessage("unrecognized lead source scored as default").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tiktok", entries[0].ContextMap()["source"])
}
