package pipeline

import (
	"context"
	"log/slog"

	"github.com/reconforge/netrecon/internal/model"
)

// Step is one unit of a recon scan. Steps run in sequence and each one
// enriches the shared report. A step returns an error only for failures
// worth recording; per-record problems stay inside the report.
type Step interface {
	// Do executes the step against the report's target.
	Do(ctx context.Context, report *model.ReconReport) error

	// Name identifies the step in logs and in the report's step list.
	Name() string
}

// Pipeline runs an ordered list of steps against one report.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline running after a step fails. The
// failure is recorded in the report and later steps still execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddSteps appends steps in execution order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepCount returns the number of registered steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs every step in order. Cancellation is checked between steps;
// a cancelled pipeline marks the report timed out and returns ctx.Err().
// When continueOnError is set, step failures are recorded in the report and
// execution proceeds; otherwise the first failure stops the scan.
func (p *Pipeline) Execute(ctx context.Context, report *model.ReconReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("scan cancelled",
				slog.String("step", step.Name()),
				slog.String("target", report.Target),
				slog.Any("reason", ctx.Err()))
			report.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Debug("running step",
			slog.String("step", step.Name()),
			slog.String("target", report.Target))

		if err := step.Do(ctx, report); err != nil {
			p.logger.Warn("step failed",
				slog.String("step", step.Name()),
				slog.String("target", report.Target),
				slog.Any("error", err))

			report.Error = err
			report.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
		}

		report.PerformedSteps = append(report.PerformedSteps, step.Name())
	}

	return nil
}
