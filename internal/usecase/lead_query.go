package usecase

import (
	"context"
	"errors"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type ListLeadsInput struct {
	Status   string `json:"status" validate:"omitempty,oneof=new contacted qualified converted lost"`
	Source   string `json:"source" validate:"omitempty,max=100"`
	MinScore int    `json:"min_score" validate:"gte=0,lte=100"`
	Limit    int    `json:"limit" validate:"gte=0,lte=200"`
	Offset   int    `json:"offset" validate:"gte=0"`
}

type LeadQueryUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewLeadQueryUseCase(repo entity.LeadRepositoryInterface) *LeadQueryUseCase {
	return &LeadQueryUseCase{Repo: repo}
}

func (uc *LeadQueryUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*entity.Lead, error) {
	lead, err := uc.Repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &NotFoundError{Resource: "lead", ID: id}
		}
		return nil, &PersistenceError{Op: "load lead", Err: err}
	}
	return lead, nil
}

func (uc *LeadQueryUseCase) List(ctx context.Context, actor entity.Actor, input ListLeadsInput) ([]*entity.Lead, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	leads, err := uc.Repo.List(ctx, entity.LeadFilter{
		OrganizationID: actor.OrganizationID,
		Status:         entity.LeadStatus(input.Status),
		Source:         entity.LeadSource(input.Source),
		MinScore:       input.MinScore,
		Limit:          input.Limit,
		Offset:         input.Offset,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list leads", Err: err}
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}
	return leads, nil
}
