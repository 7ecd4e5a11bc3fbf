package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/orchestration"
)

// formatDuration formats a duration in a consistent, human-readable way.
// This ensures stable output regardless of Go version changes.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

// consoleReporter renders progress events and the final summary for humans.
type consoleReporter struct {
	out     io.Writer
	verbose bool

	pass *color.Color
	fail *color.Color
	warn *color.Color
	bold *color.Color
}

func newConsoleReporter(out io.Writer, verbose bool) *consoleReporter {
	return &consoleReporter{
		out:     out,
		verbose: verbose,
		pass:    color.New(color.FgGreen, color.Bold),
		fail:    color.New(color.FgRed, color.Bold),
		warn:    color.New(color.FgYellow),
		bold:    color.New(color.Bold),
	}
}

// Listen receives progress events from the evaluator.
func (r *consoleReporter) Listen(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventStageStart:
		fmt.Fprintf(r.out, "[%d/%d] %s\n", event.StageNum, event.TotalStages, event.Stage)
	case orchestration.EventStageComplete:
		r.printStage(event.Report)
	}
}

func (r *consoleReporter) printStage(report *models.OracleReport) {
	for _, outcome := range report.Outcomes {
		r.printOutcome(outcome)
	}

	status := r.pass.Sprint("PASS")
	if !report.Passed {
		status = r.fail.Sprint("FAIL")
	}
	fmt.Fprintf(r.out, "  %s %s (%s)\n\n",
		status, report.Stage, formatDuration(time.Duration(report.DurationMs)*time.Millisecond))
}

func (r *consoleReporter) printOutcome(outcome models.RequirementOutcome) {
	switch {
	case outcome.Result.Passed:
		fmt.Fprintf(r.out, "    %s %s\n", r.pass.Sprint("✓"), outcome.Name)
	case outcome.Optional:
		fmt.Fprintf(r.out, "    %s %s: %s\n", r.warn.Sprint("!"), outcome.Name, outcome.Result.Message)
	default:
		fmt.Fprintf(r.out, "    %s %s: %s\n", r.fail.Sprint("✗"), outcome.Name, outcome.Result.Message)
	}

	if r.verbose && !outcome.Result.Passed {
		if outcome.Result.Stdout != "" {
			fmt.Fprintf(r.out, "      stdout: %s\n", outcome.Result.Stdout)
		}
		if outcome.Result.Stderr != "" {
			fmt.Fprintf(r.out, "      stderr: %s\n", outcome.Result.Stderr)
		}
		if outcome.Result.ExitCode != nil {
			fmt.Fprintf(r.out, "      exit code: %d\n", *outcome.Result.ExitCode)
		}
	}
}

// Summary prints the final scorecard line.
func (r *consoleReporter) Summary(card *models.Scorecard) {
	scored := r.pass
	if card.Score < models.MaxScore {
		scored = r.fail
	}

	fmt.Fprintf(r.out, "%s: %s (%s)\n",
		r.bold.Sprint(card.Entry),
		scored.Sprintf("%d/%d", card.Score, models.MaxScore),
		formatDuration(time.Duration(card.DurationMs)*time.Millisecond))

	for _, stage := range models.Stages() {
		mark := r.fail.Sprint("✗")
		if card.StageScores[stage] == 1 {
			mark = r.pass.Sprint("✓")
		}
		fmt.Fprintf(r.out, "  %s %s\n", mark, stage)
	}
}
