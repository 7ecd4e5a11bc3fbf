// Package requirements defines the Requirement contract (a single atomic,
// idempotent, time-bounded check) and the concrete requirement variants used
// by the stage oracles.
package requirements

import (
	"context"
	"time"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
)

// Requirement is a single checkable assertion. Check must be idempotent (no
// side effects that change the outcome on re-invocation), non-interactive, and
// time-bounded: any external command it runs carries an explicit timeout, and
// exceeding it is a failure, not a hang. Check never panics and never reports
// errors out-of-band: every failure mode is folded into the CheckResult.
type Requirement interface {
	// Name identifies the requirement in reports and logs.
	Name() string

	// Optional requirements that fail only emit a warning; they never fail
	// the stage.
	Optional() bool

	// Check evaluates the requirement. The context bounds cancellation from
	// above; each requirement additionally enforces its own timeout.
	Check(ctx context.Context) models.CheckResult
}

// base carries the identity fields shared by every requirement variant.
type base struct {
	name     string
	optional bool
}

func (b base) Name() string   { return b.name }
func (b base) Optional() bool { return b.optional }

// measured runs fn and stamps the elapsed wall-clock time on its result.
func measured(fn func() models.CheckResult) models.CheckResult {
	start := time.Now()
	res := fn()
	res.DurationMs = time.Since(start).Milliseconds()
	return res
}

// Fail is a requirement that always fails with a fixed message. Oracles emit
// it when config-derived requirement construction finds bad data, so the
// problem surfaces in the report next to its healthy siblings.
type Fail struct {
	base
	message string
}

// NewFail returns an always-failing requirement.
func NewFail(name, message string) *Fail {
	return &Fail{base: base{name: name}, message: message}
}

func (f *Fail) Check(ctx context.Context) models.CheckResult {
	return models.Failf("%s", f.message)
}
