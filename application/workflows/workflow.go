// Package workflows runs the ordered concept-action sequences that make
// up one external operation.
//
// The consistency model is best-effort ordered composition, not
// atomicity: steps execute strictly in declared order, the first failure
// aborts the remaining steps and is returned to the caller verbatim, and
// steps that already committed are NOT rolled back. Workflows that create
// uniquely-keyed resources must find-or-create on that key so repeating a
// workflow after a partial failure does not duplicate resources. Retry
// policy, if any, belongs to the caller.
package workflows

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"mosaic-backend/pkg/observability"
)

// Step is one declared action invocation within a workflow.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Workflow is a named, ordered step sequence.
type Workflow struct {
	Name  string
	Steps []Step
}

// Runner executes workflows with per-step logging, tracing and metrics.
type Runner struct {
	logger  *zap.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewRunner creates a workflow runner.
func NewRunner(logger *zap.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("mosaic-backend/workflows"),
	}
}

// Execute runs the workflow's steps in order and returns the first
// failure, leaving earlier committed steps in place.
func (r *Runner) Execute(ctx context.Context, wf Workflow) error {
	started := time.Now()

	ctx, span := r.tracer.Start(ctx, "workflow:"+wf.Name)
	defer span.End()

	r.logger.Debug("workflow starting",
		zap.String("workflow", wf.Name),
		zap.Int("steps", len(wf.Steps)),
	)

	for i, step := range wf.Steps {
		if err := r.runStep(ctx, wf.Name, step); err != nil {
			span.SetStatus(codes.Error, step.Name)
			r.metrics.ObserveWorkflow(wf.Name, "failed", time.Since(started))
			r.logger.Warn("workflow aborted",
				zap.String("workflow", wf.Name),
				zap.String("step", step.Name),
				zap.Int("completedSteps", i),
				zap.Error(err),
			)
			return err
		}
	}

	r.metrics.ObserveWorkflow(wf.Name, "completed", time.Since(started))
	r.logger.Debug("workflow completed", zap.String("workflow", wf.Name))
	return nil
}

func (r *Runner) runStep(ctx context.Context, workflow string, step Step) error {
	ctx, span := r.tracer.Start(ctx, "step:"+step.Name)
	defer span.End()

	if err := step.Run(ctx); err != nil {
		span.RecordError(err)
		r.metrics.ObserveWorkflowStep(workflow, step.Name, "failed")
		return err
	}
	r.metrics.ObserveWorkflowStep(workflow, step.Name, "ok")
	return nil
}
