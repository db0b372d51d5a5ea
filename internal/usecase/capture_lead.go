package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/messaging"
)

type CaptureLeadsOutput struct {
	Created []*LeadOutput `json:"created"`
	Failed  []string      `json:"failed,omitempty"`
}

// CaptureLeadsUseCase turns inbound messaging payloads into leads through
// the regular create path, so they are scored the same way.
type CaptureLeadsUseCase struct {
	Create *CreateLeadUseCase
	Owner  entity.Actor
	Logger *zap.Logger
}

func NewCaptureLeadsUseCase(create *CreateLeadUseCase, owner entity.Actor, logger *zap.Logger) *CaptureLeadsUseCase {
	return &CaptureLeadsUseCase{Create: create, Owner: owner, Logger: logger}
}

func (uc *CaptureLeadsUseCase) Execute(ctx context.Context, platform messaging.Platform, body []byte) (*CaptureLeadsOutput, error) {
	inbound, err := messaging.Parse(platform, body)
	if err != nil {
		if errors.Is(err, messaging.ErrNoLead) {
			return &CaptureLeadsOutput{Created: []*LeadOutput{}}, nil
		}
		return nil, newValidationError("payload", err.Error())
	}

	out := &CaptureLeadsOutput{Created: make([]*LeadOutput, 0, len(inbound))}
	for _, in := range inbound {
		res, err := uc.Create.Execute(ctx, uc.Owner, CreateLeadInput{
			Name:          in.Name,
			Email:         in.Email,
			Phone:         in.Phone,
			CompanyName:   in.CompanyName,
			JobTitle:      in.JobTitle,
			Source:        in.Source,
			Notes:         in.Notes,
			ExpectedValue: in.ExpectedValue,
		})
		if err != nil {
			uc.Logger.Warn("inbound lead rejected",
				zap.String("platform", string(platform)),
				zap.String("name", in.Name),
				zap.Error(err),
			)
			out.Failed = append(out.Failed, in.Name+": "+err.Error())
			continue
		}
		out.Created = append(out.Created, res)
	}

	uc.Logger.Info("inbound leads captured",
		zap.String("platform", string(platform)),
		zap.Int("created", len(out.Created)),
		zap.Int("failed", len(out.Failed)),
	)
	return out, nil
}
