// Package orchestration runs the four stage oracles over an entry bundle and
// aggregates their reports into a scorecard.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/entry"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/oracle"
)

// ProgressListener receives progress updates during evaluation.
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event.
type EventType string

// EventType constants
const (
	EventEvaluationStart    EventType = "evaluation_start"
	EventStageStart         EventType = "stage_start"
	EventStageComplete      EventType = "stage_complete"
	EventEvaluationComplete EventType = "evaluation_complete"
)

// ProgressEvent represents a progress update.
type ProgressEvent struct {
	EventType   EventType
	Stage       models.Stage
	StageNum    int
	TotalStages int
	Report      *models.OracleReport
	Score       int
	DurationMs  int64
}

// Evaluator runs every stage of an entry bundle in canonical order. Stages
// are independent: an earlier failure never skips a later stage, so the
// scorecard always reflects all four.
type Evaluator struct {
	cfg       *entry.Config
	builder   *oracle.Builder
	log       *slog.Logger
	listeners []ProgressListener
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the logger used by the evaluator and its stage oracles.
func WithLogger(log *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.log = log
	}
}

// WithProgressListener registers a callback for progress events.
func WithProgressListener(listener ProgressListener) EvaluatorOption {
	return func(e *Evaluator) {
		e.listeners = append(e.listeners, listener)
	}
}

// NewEvaluator creates an evaluator for a loaded entry bundle.
func NewEvaluator(cfg *entry.Config, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		cfg:     cfg,
		builder: oracle.NewBuilder(cfg),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs all stages and returns the scorecard. It always returns a
// complete card: requirement failures are scored, not raised.
func (e *Evaluator) Evaluate(ctx context.Context) *models.Scorecard {
	start := time.Now()
	stages := models.Stages()

	card := &models.Scorecard{
		RunID:       uuid.NewString(),
		Entry:       e.cfg.Name,
		Timestamp:   time.Now().UTC(),
		StageScores: make(map[models.Stage]int, len(stages)),
	}

	e.log.Info("evaluation start", "run_id", card.RunID, "entry", card.Entry)
	e.emit(ProgressEvent{EventType: EventEvaluationStart, TotalStages: len(stages)})

	for i, stage := range stages {
		e.emit(ProgressEvent{
			EventType:   EventStageStart,
			Stage:       stage,
			StageNum:    i + 1,
			TotalStages: len(stages),
		})

		report := e.builder.Oracle(stage, e.log).Run(ctx)
		card.Reports = append(card.Reports, report)

		score := 0
		if report.Passed {
			score = 1
		}
		card.StageScores[stage] = score
		card.Score += score

		e.emit(ProgressEvent{
			EventType:   EventStageComplete,
			Stage:       stage,
			StageNum:    i + 1,
			TotalStages: len(stages),
			Report:      &card.Reports[len(card.Reports)-1],
			DurationMs:  report.DurationMs,
		})
	}

	card.DurationMs = time.Since(start).Milliseconds()

	e.log.Info(fmt.Sprintf("FINAL_SCORE %d/%d", card.Score, models.MaxScore),
		"run_id", card.RunID,
		"entry", card.Entry,
		"duration_ms", card.DurationMs)
	e.emit(ProgressEvent{
		EventType:   EventEvaluationComplete,
		TotalStages: len(stages),
		Score:       card.Score,
		DurationMs:  card.DurationMs,
	})

	return card
}

func (e *Evaluator) emit(event ProgressEvent) {
	for _, listener := range e.listeners {
		listener(event)
	}
}
