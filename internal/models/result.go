// Package models holds the shared result types produced by requirement checks,
// stage oracles, and the evaluation orchestrator.
package models

import "fmt"

// DefaultMaxMessageChars bounds human-readable messages embedded in logs.
const DefaultMaxMessageChars = 4096

// DefaultMaxCaptureChars bounds captured stdout/stderr per stream.
const DefaultMaxCaptureChars = 32768

// CheckResult is the outcome of running a single requirement check. It is
// immutable once returned from a Check call: exactly one pass/fail outcome,
// never partial.
type CheckResult struct {
	// Passed indicates whether the check met its acceptance criteria.
	Passed bool `json:"passed"`
	// Message is a short human-readable summary, empty on success.
	Message string `json:"message,omitempty"`
	// Stdout is the captured (possibly truncated) standard output, if a
	// command was executed.
	Stdout string `json:"stdout,omitempty"`
	// Stderr is the captured (possibly truncated) standard error.
	Stderr string `json:"stderr,omitempty"`
	// ExitCode is the process exit code, when a process ran to completion.
	ExitCode *int `json:"exit_code,omitempty"`
	// TimedOut is true when a subprocess exceeded its deadline.
	TimedOut bool `json:"timed_out,omitempty"`
	// Dir is the working directory used, if applicable.
	Dir string `json:"dir,omitempty"`
	// DurationMs is the wall-clock time the check took.
	DurationMs int64 `json:"duration_ms"`
}

// Pass returns a successful CheckResult. Callers attach diagnostics by setting
// fields on the returned value before handing it off.
func Pass() CheckResult {
	return CheckResult{Passed: true}
}

// Failf returns a failed CheckResult with a formatted message.
func Failf(format string, args ...any) CheckResult {
	return CheckResult{Passed: false, Message: fmt.Sprintf(format, args...)}
}

// RequirementOutcome pairs a requirement's identity with its check result.
type RequirementOutcome struct {
	Name     string      `json:"name"`
	Optional bool        `json:"optional,omitempty"`
	Result   CheckResult `json:"result"`
}

// OracleReport aggregates the outcomes of one stage's requirements, in
// execution order.
type OracleReport struct {
	Stage Stage `json:"stage"`
	// Passed is true iff every non-optional requirement passed.
	Passed   bool                 `json:"passed"`
	Outcomes []RequirementOutcome `json:"outcomes"`
	// DurationMs is the total wall-clock time for the stage.
	DurationMs int64 `json:"duration_ms"`
}

// Errors returns the outcomes of failed non-optional requirements.
func (r *OracleReport) Errors() []RequirementOutcome {
	var out []RequirementOutcome
	for _, o := range r.Outcomes {
		if !o.Result.Passed && !o.Optional {
			out = append(out, o)
		}
	}
	return out
}

// Warnings returns the outcomes of failed optional requirements.
func (r *OracleReport) Warnings() []RequirementOutcome {
	var out []RequirementOutcome
	for _, o := range r.Outcomes {
		if !o.Result.Passed && o.Optional {
			out = append(out, o)
		}
	}
	return out
}

// TruncateText caps text at maxChars characters, appending a marker when
// anything was cut.
func TruncateText(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars] + "..."
}
