package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type UpdateLeadUseCase struct {
	Repo       entity.LeadRepositoryInterface
	Scorer     *LeadScorer
	Activities ActivityLogger
	Logger     *zap.Logger
}

func NewUpdateLeadUseCase(
	repo entity.LeadRepositoryInterface,
	scorer *LeadScorer,
	activities ActivityLogger,
	logger *zap.Logger,
) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{
		Repo:       repo,
		Scorer:     scorer,
		Activities: activities,
		Logger:     logger,
	}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, actor entity.Actor, leadID string, input UpdateLeadInput) (*LeadOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	patch := toLeadPatch(input)
	if patch.Empty() {
		return nil, newValidationError("", "no fields to update")
	}

	stored, err := uc.Repo.FindByID(ctx, actor.OrganizationID, leadID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &NotFoundError{Resource: "lead", ID: leadID}
		}
		return nil, &PersistenceError{Op: "load lead", Err: err}
	}

	if err := uc.Repo.Update(ctx, actor.OrganizationID, leadID, patch); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &NotFoundError{Resource: "lead", ID: leadID}
		}
		return nil, &PersistenceError{Op: "update lead", Err: err}
	}

	merged := patch.Apply(*stored)
	out := &LeadOutput{Lead: &merged}

	if patch.TouchesScore() {
		if d := uc.Scorer.Rescore(ctx, &merged); d != nil {
			out.Degraded = append(out.Degraded, *d)
		}
	}

	if uc.Activities != nil {
		a := entity.NewActivity(merged.OrganizationID, actor.UserID, "lead", merged.ID, entity.ActivityLeadUpdated, "Lead updated: "+merged.Name)
		if err := uc.Activities.Log(ctx, a); err != nil {
			uc.Logger.Warn("activity log failed", zap.String("lead_id", merged.ID), zap.Error(err))
			out.Degraded = append(out.Degraded, DegradedStep{Step: "log_activity", Error: err.Error()})
		}
	}

	return out, nil
}

func toLeadPatch(in UpdateLeadInput) entity.LeadPatch {
	p := entity.LeadPatch{
		Name:          trimmed(in.Name),
		Email:         trimmed(in.Email),
		Phone:         trimmed(in.Phone),
		CompanyName:   trimmed(in.CompanyName),
		JobTitle:      trimmed(in.JobTitle),
		ExpectedValue: in.ExpectedValue,
		AssignedTo:    in.AssignedTo,
		Notes:         in.Notes,
	}
	if in.Source != nil {
		s := entity.LeadSource(strings.TrimSpace(*in.Source))
		p.Source = &s
	}
	if in.Priority != nil {
		pr := entity.Priority(strings.ToLower(strings.TrimSpace(*in.Priority)))
		p.Priority = &pr
	}
	if in.Status != nil {
		st := entity.LeadStatus(*in.Status)
		p.Status = &st
	}
	return p
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
