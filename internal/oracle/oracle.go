// Package oracle evaluates one stage's requirement list and folds every
// outcome into a single report. Oracles observe and score; they never repair
// the workspace they inspect.
package oracle

import (
	"context"
	"log/slog"
	"time"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/requirements"
)

// BuildFunc produces the requirement list for a stage. Construction is
// deferred so one bad stage's configuration cannot keep the others from
// running.
type BuildFunc func() ([]requirements.Requirement, error)

// Oracle runs a single evaluation stage.
type Oracle struct {
	stage models.Stage
	log   *slog.Logger
	build BuildFunc
}

// New returns an oracle for a stage. A nil logger falls back to slog.Default.
func New(stage models.Stage, log *slog.Logger, build BuildFunc) *Oracle {
	if log == nil {
		log = slog.Default()
	}
	return &Oracle{stage: stage, log: log, build: build}
}

// Stage returns the stage this oracle evaluates.
func (o *Oracle) Stage() models.Stage {
	return o.stage
}

// Run executes every requirement in declaration order and returns the stage
// report. All requirements run even after a failure; the stage passes iff
// every non-optional requirement passed. A requirement-construction error
// becomes a single failed outcome so the problem shows up in the report
// instead of aborting evaluation.
func (o *Oracle) Run(ctx context.Context) models.OracleReport {
	start := time.Now()
	report := models.OracleReport{Stage: o.stage}

	reqs, err := o.build()
	if err != nil {
		o.log.Error("failed to build stage requirements", "stage", o.stage, "error", err)
		report.Outcomes = []models.RequirementOutcome{{
			Name:   "requirements",
			Result: models.Failf("failed to build requirements: %s", err),
		}}
		report.DurationMs = time.Since(start).Milliseconds()
		return report
	}

	for _, req := range reqs {
		outcome := models.RequirementOutcome{
			Name:     req.Name(),
			Optional: req.Optional(),
			Result:   req.Check(ctx),
		}
		report.Outcomes = append(report.Outcomes, outcome)
		o.logOutcome(outcome)
	}

	report.Passed = len(report.Errors()) == 0
	report.DurationMs = time.Since(start).Milliseconds()

	o.log.Info("stage complete",
		"stage", o.stage,
		"passed", report.Passed,
		"errors", len(report.Errors()),
		"warnings", len(report.Warnings()),
		"duration_ms", report.DurationMs)

	return report
}

func (o *Oracle) logOutcome(out models.RequirementOutcome) {
	attrs := []any{
		"stage", o.stage,
		"requirement", out.Name,
		"duration_ms", out.Result.DurationMs,
	}

	switch {
	case out.Result.Passed:
		o.log.Info("PASS", attrs...)
	case out.Optional:
		o.log.Warn("WARN", append(attrs, "message", out.Result.Message)...)
	default:
		o.log.Error("FAIL", append(attrs, "message", out.Result.Message)...)
	}

	if !out.Result.Passed && o.log.Enabled(context.Background(), slog.LevelDebug) {
		diag := []any{"stage", o.stage, "requirement", out.Name}
		if out.Result.ExitCode != nil {
			diag = append(diag, "exit_code", *out.Result.ExitCode)
		}
		if out.Result.TimedOut {
			diag = append(diag, "timed_out", true)
		}
		if out.Result.Dir != "" {
			diag = append(diag, "dir", out.Result.Dir)
		}
		if out.Result.Stdout != "" {
			diag = append(diag, "stdout", out.Result.Stdout)
		}
		if out.Result.Stderr != "" {
			diag = append(diag, "stderr", out.Result.Stderr)
		}
		o.log.Debug("requirement diagnostics", diag...)
	}
}
