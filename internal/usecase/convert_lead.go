package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/observability"
)

const dealCloseWindow = 30 * 24 * time.Hour

type ConvertLeadUseCase struct {
	LeadRepo    entity.LeadRepositoryInterface
	CompanyRepo entity.CompanyRepositoryInterface
	ContactRepo entity.ContactRepositoryInterface
	DealRepo    entity.DealRepositoryInterface
	Activities  ActivityLogger
	Notifier    DealNotifier
	Metrics     *observability.Metrics
	Logger      *zap.Logger

	now func() time.Time
}

func NewConvertLeadUseCase(
	leadRepo entity.LeadRepositoryInterface,
	companyRepo entity.CompanyRepositoryInterface,
	contactRepo entity.ContactRepositoryInterface,
	dealRepo entity.DealRepositoryInterface,
	activities ActivityLogger,
	notifier DealNotifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ConvertLeadUseCase {
	return &ConvertLeadUseCase{
		LeadRepo:    leadRepo,
		CompanyRepo: companyRepo,
		ContactRepo: contactRepo,
		DealRepo:    dealRepo,
		Activities:  activities,
		Notifier:    notifier,
		Metrics:     metrics,
		Logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ConvertLeadUseCase) Execute(ctx context.Context, actor entity.Actor, input ConvertLeadInput) (*ConvertLeadOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	lead, err := uc.LeadRepo.FindByID(ctx, actor.OrganizationID, input.LeadID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			uc.Metrics.RecordConversion("not_found")
			return nil, &NotFoundError{Resource: "lead", ID: input.LeadID}
		}
		uc.Metrics.RecordConversion("failed")
		return nil, &PersistenceError{Op: "load lead", Err: err}
	}

	if lead.Status != entity.LeadStatusQualified {
		uc.Metrics.RecordConversion("invalid_state")
		return nil, newInvalidStateError(fmt.Sprintf("only qualified leads can be converted (current status: %s)", lead.Status))
	}

	owner := lead.UserID
	if owner == "" {
		owner = actor.UserID
	}

	var (
		companyID *string
		contactID *string
		deal      *entity.Deal
	)

	wf := NewWorkflow("convert_lead", uc.Logger.With(zap.String("lead_id", lead.ID)))

	if name := strings.TrimSpace(lead.CompanyName); name != "" {
		wf.Degradable("upsert_company", func(ctx context.Context) error {
			id, err := uc.upsertCompany(ctx, lead.OrganizationID, owner, name)
			if err != nil {
				return err
			}
			companyID = &id
			return nil
		})
	}

	if strings.TrimSpace(lead.Name) != "" || strings.TrimSpace(lead.Email) != "" {
		wf.Degradable("upsert_contact", func(ctx context.Context) error {
			id, err := uc.upsertContact(ctx, lead, owner, companyID)
			if err != nil {
				return err
			}
			contactID = &id
			return nil
		})
	}

	wf.Fatal("create_deal", func(ctx context.Context) error {
		deal = uc.buildDeal(actor, lead, owner, companyID, contactID)
		return uc.DealRepo.Create(ctx, deal)
	})

	wf.Degradable("mark_lead_converted", func(ctx context.Context) error {
		return uc.LeadRepo.UpdateStatus(ctx, lead.ID, entity.LeadStatusConverted)
	})

	if uc.Activities != nil {
		wf.Degradable("log_lead_converted", func(ctx context.Context) error {
			a := entity.NewActivity(lead.OrganizationID, actor.UserID, "lead", lead.ID, entity.ActivityLeadConverted,
				fmt.Sprintf("Lead %s converted to deal %s", lead.Name, deal.Title))
			a.Metadata = map[string]string{"deal_id": deal.ID}
			return uc.Activities.Log(ctx, a)
		})
		wf.Degradable("log_deal_created", func(ctx context.Context) error {
			a := entity.NewActivity(lead.OrganizationID, actor.UserID, "deal", deal.ID, entity.ActivityDealCreated,
				"Deal created from lead: "+deal.Title)
			a.Metadata = map[string]string{"lead_id": lead.ID}
			return uc.Activities.Log(ctx, a)
		})
	}

	if uc.Notifier != nil {
		wf.Degradable("notify_assignee", func(ctx context.Context) error {
			return uc.Notifier.NotifyDealCreated(ctx, deal, lead)
		})
	}

	degraded, err := wf.Execute(ctx)
	for _, d := range degraded {
		uc.Metrics.RecordDegradedStep(d.Step)
	}
	if err != nil {
		uc.Metrics.RecordConversion("failed")
		uc.Logger.Error("lead conversion failed", zap.String("lead_id", lead.ID), zap.Error(err))
		return nil, &PersistenceError{Op: "create deal", Err: err}
	}

	uc.Metrics.RecordConversion("converted")
	uc.Logger.Info("lead converted",
		zap.String("lead_id", lead.ID),
		zap.String("deal_id", deal.ID),
		zap.Int("degraded_steps", len(degraded)),
	)

	return &ConvertLeadOutput{
		Success:  true,
		Deal:     deal,
		LeadID:   lead.ID,
		Message:  "Lead converted to deal successfully",
		Degraded: degraded,
	}, nil
}

func (uc *ConvertLeadUseCase) buildDeal(actor entity.Actor, lead *entity.Lead, owner string, companyID, contactID *string) *entity.Deal {
	deal := entity.NewDeal(lead.OrganizationID, owner, lead.ID)
	deal.Title = dealTitle(lead)
	if lead.ExpectedValue != nil {
		deal.Value = *lead.ExpectedValue
	}
	deal.Priority = DealPriorityFor(lead.Priority)
	deal.Channel = ChannelForSource(lead.Source)
	deal.CompanyID = companyID
	deal.ContactID = contactID

	closeAt := uc.now().Add(dealCloseWindow)
	deal.CloseDate = closeAt
	deal.ExpectedCloseDate = closeAt

	deal.AssignedTo = lead.AssignedTo
	if deal.AssignedTo == "" {
		deal.AssignedTo = actor.UserID
	}
	return deal
}

func dealTitle(lead *entity.Lead) string {
	company := strings.TrimSpace(lead.CompanyName)
	contact := strings.TrimSpace(lead.Name)
	switch {
	case company != "" && contact != "":
		return company + " - " + contact
	case company != "":
		return company
	case contact != "":
		return contact
	case lead.Email != "":
		return lead.Email
	default:
		return "Untitled deal"
	}
}

func (uc *ConvertLeadUseCase) upsertCompany(ctx context.Context, orgID, owner, name string) (string, error) {
	existing, err := uc.CompanyRepo.FindByName(ctx, owner, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, entity.ErrNotFound) {
		return "", fmt.Errorf("find company: %w", err)
	}

	c := entity.NewCompany(orgID, owner, name)
	if err := uc.CompanyRepo.Create(ctx, c); err != nil {
		// a concurrent conversion created it first
		if errors.Is(err, entity.ErrAlreadyExists) {
			if existing, ferr := uc.CompanyRepo.FindByName(ctx, owner, name); ferr == nil {
				return existing.ID, nil
			}
		}
		return "", fmt.Errorf("create company: %w", err)
	}
	return c.ID, nil
}

func (uc *ConvertLeadUseCase) upsertContact(ctx context.Context, lead *entity.Lead, owner string, companyID *string) (string, error) {
	email := strings.TrimSpace(lead.Email)
	if email != "" {
		existing, err := uc.ContactRepo.FindByEmail(ctx, owner, email)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return "", fmt.Errorf("find contact: %w", err)
		}
	}

	name := strings.TrimSpace(lead.Name)
	if name == "" {
		name = email
	}
	c := entity.NewContact(lead.OrganizationID, owner, name, email, lead.Phone, companyID)
	if err := uc.ContactRepo.Create(ctx, c); err != nil {
		if email != "" && errors.Is(err, entity.ErrAlreadyExists) {
			if existing, ferr := uc.ContactRepo.FindByEmail(ctx, owner, email); ferr == nil {
				return existing.ID, nil
			}
		}
		return "", fmt.Errorf("create contact: %w", err)
	}
	return c.ID, nil
}
