package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type CreateLeadUseCase struct {
	Repo       entity.LeadRepositoryInterface
	Scorer     *LeadScorer
	Activities ActivityLogger
	Logger     *zap.Logger
}

func NewCreateLeadUseCase(
	repo entity.LeadRepositoryInterface,
	scorer *LeadScorer,
	activities ActivityLogger,
	logger *zap.Logger,
) *CreateLeadUseCase {
	return &CreateLeadUseCase{
		Repo:       repo,
		Scorer:     scorer,
		Activities: activities,
		Logger:     logger,
	}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, actor entity.Actor, input CreateLeadInput) (*LeadOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	lead := entity.NewLead(actor.OrganizationID, actor.UserID, strings.TrimSpace(input.Name))
	lead.Email = strings.TrimSpace(input.Email)
	lead.Phone = strings.TrimSpace(input.Phone)
	lead.CompanyName = strings.TrimSpace(input.CompanyName)
	lead.JobTitle = strings.TrimSpace(input.JobTitle)
	lead.Source = entity.LeadSource(strings.TrimSpace(input.Source))
	lead.Priority = entity.Priority(strings.ToLower(strings.TrimSpace(input.Priority)))
	lead.ExpectedValue = input.ExpectedValue
	lead.AssignedTo = input.AssignedTo
	lead.Notes = input.Notes
	if input.Status != "" {
		lead.Status = entity.LeadStatus(input.Status)
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, &PersistenceError{Op: "create lead", Err: err}
	}

	out := &LeadOutput{Lead: lead}

	if d := uc.Scorer.Rescore(ctx, lead); d != nil {
		out.Degraded = append(out.Degraded, *d)
	}

	if uc.Activities != nil {
		a := entity.NewActivity(lead.OrganizationID, actor.UserID, "lead", lead.ID, entity.ActivityLeadCreated, "Lead created: "+lead.Name)
		if err := uc.Activities.Log(ctx, a); err != nil {
			uc.Logger.Warn("activity log failed", zap.String("lead_id", lead.ID), zap.Error(err))
			out.Degraded = append(out.Degraded, DegradedStep{Step: "log_activity", Error: err.Error()})
		}
	}

	uc.Logger.Info("lead created",
		zap.String("lead_id", lead.ID),
		zap.String("source", string(lead.Source)),
		zap.Int("score", lead.Score),
	)
	return out, nil
}
