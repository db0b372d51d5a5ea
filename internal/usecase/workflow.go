package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DegradedStep records a non-essential step that failed without failing the
// operation it belongs to.
type DegradedStep struct {
	Step  string `json:"step"`
	Error string `json:"error"`
}

type stepPolicy int

const (
	stepFatal stepPolicy = iota
	stepDegradable
)

type step struct {
	name   string
	policy stepPolicy
	fn     func(context.Context) error
}

// Workflow runs named steps in order. A fatal step failure stops the run and
// is returned; a degradable failure is logged, recorded and the run goes on.
// There is no rollback: steps that already ran stay applied.
type Workflow struct {
	name   string
	steps  []step
	logger *zap.Logger
}

func NewWorkflow(name string, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{name: name, logger: logger}
}

func (w *Workflow) Fatal(name string, fn func(context.Context) error) {
	w.steps = append(w.steps, step{name: name, policy: stepFatal, fn: fn})
}

func (w *Workflow) Degradable(name string, fn func(context.Context) error) {
	w.steps = append(w.steps, step{name: name, policy: stepDegradable, fn: fn})
}

func (w *Workflow) Execute(ctx context.Context) ([]DegradedStep, error) {
	var degraded []DegradedStep

	for _, s := range w.steps {
		err := s.fn(ctx)
		if err == nil {
			continue
		}

		if s.policy == stepFatal {
			return degraded, fmt.Errorf("%s: step %q failed: %w", w.name, s.name, err)
		}

		w.logger.Warn("degraded step",
			zap.String("workflow", w.name),
			zap.String("step", s.name),
			zap.Error(err),
		)
		degraded = append(degraded, DegradedStep{Step: s.name, Error: err.Error()})
	}

	return degraded, nil
}
