package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/observability"
)

const stepScoreLead = "score_lead"

// LeadScorer recomputes and stores a lead's score after a write. It never
// returns an error: a failure comes back as a DegradedStep.
type LeadScorer struct {
	Repo    entity.LeadRepositoryInterface
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

func NewLeadScorer(repo entity.LeadRepositoryInterface, metrics *observability.Metrics, logger *zap.Logger) *LeadScorer {
	return &LeadScorer{Repo: repo, Metrics: metrics, Logger: logger}
}

// Rescore scores the lead as currently held in memory, persists the score and
// sets lead.Score on success.
func (s *LeadScorer) Rescore(ctx context.Context, lead *entity.Lead) *DegradedStep {
	score, err := s.compute(lead)
	if err == nil {
		err = s.Repo.UpdateScore(ctx, lead.ID, score)
	}
	if err != nil {
		s.Metrics.RecordLeadScore("failed")
		s.Logger.Warn("lead scoring failed",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
		return &DegradedStep{Step: stepScoreLead, Error: err.Error()}
	}

	lead.Score = score
	s.Metrics.RecordLeadScore("ok")
	if lead.Source != "" && !lead.Source.Known() {
		s.Logger.Info("unrecognized lead source scored as default",
			zap.String("lead_id", lead.ID),
			zap.String("source", string(lead.Source)),
		)
	}
	s.Logger.Debug("lead scored", zap.String("lead_id", lead.ID), zap.Int("score", score))
	return nil
}

func (s *LeadScorer) compute(lead *entity.Lead) (score int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()
	return entity.ScoreLead(lead.Attributes()), nil
}
