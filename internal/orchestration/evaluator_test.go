package orchestration

import (
	"context"
	"testing"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/entry"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"github.com/stretchr/testify/require"
)

// twoPassTwoFail declares four stages where env_setup and prep_benchmark pass
// and the other two fail.
const twoPassTwoFail = `
name: half-credit
stages:
  env_setup:
    - name: shell
      type: command
      params: {command: ["true"]}
  build_install:
    - name: build
      type: command
      params: {command: ["false"]}
  prep_benchmark:
    - name: ready
      type: command
      params: {command: ["true"]}
  run_experiments:
    - name: results-present
      type: path
      params: {path: definitely-missing.json, type: file}
`

func loadConfig(t *testing.T, yaml string) *entry.Config {
	t.Helper()
	cfg, err := entry.Parse([]byte(yaml), t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestEvaluator_Evaluate(t *testing.T) {
	t.Run("score counts passing stages", func(t *testing.T) {
		card := NewEvaluator(loadConfig(t, twoPassTwoFail)).Evaluate(context.Background())

		require.Equal(t, 2, card.Score)
		require.Equal(t, map[models.Stage]int{
			models.StageEnvSetup:       1,
			models.StageBuildInstall:   0,
			models.StagePrepBenchmark:  1,
			models.StageRunExperiments: 0,
		}, card.StageScores)
		require.Equal(t, "half-credit", card.Entry)
		require.NotEmpty(t, card.RunID)
	})

	t.Run("all stages run despite earlier failures", func(t *testing.T) {
		card := NewEvaluator(loadConfig(t, twoPassTwoFail)).Evaluate(context.Background())

		require.Len(t, card.Reports, 4)
		for i, stage := range models.Stages() {
			require.Equal(t, stage, card.Reports[i].Stage)
			require.NotEmpty(t, card.Reports[i].Outcomes)
		}
	})

	t.Run("evaluation is idempotent", func(t *testing.T) {
		ev := NewEvaluator(loadConfig(t, twoPassTwoFail))
		first := ev.Evaluate(context.Background())
		second := ev.Evaluate(context.Background())

		require.Equal(t, first.Score, second.Score)
		require.Equal(t, first.StageScores, second.StageScores)
		require.NotEqual(t, first.RunID, second.RunID)
	})

	t.Run("empty bundle scores full marks vacuously", func(t *testing.T) {
		card := NewEvaluator(loadConfig(t, "name: empty\n")).Evaluate(context.Background())
		require.Equal(t, models.MaxScore, card.Score)
	})

	t.Run("a bad stage config fails only that stage", func(t *testing.T) {
		card := NewEvaluator(loadConfig(t, `
name: partial
stages:
  env_setup:
    - name: shell
      type: command
      params: {command: ["true"]}
  run_experiments:
    - name: metrics
      type: experiment_comparison
      params: {results: nope, reference: nope}
`)).Evaluate(context.Background())

		require.Equal(t, 3, card.Score)
		report := card.Report(models.StageRunExperiments)
		require.NotNil(t, report)
		require.False(t, report.Passed)
		require.Contains(t, report.Outcomes[0].Result.Message, "failed to build requirements")
	})

	t.Run("progress listeners see every stage", func(t *testing.T) {
		var events []ProgressEvent
		ev := NewEvaluator(loadConfig(t, twoPassTwoFail),
			WithProgressListener(func(e ProgressEvent) { events = append(events, e) }))
		ev.Evaluate(context.Background())

		var starts, completes int
		for _, e := range events {
			switch e.EventType {
			case EventStageStart:
				starts++
			case EventStageComplete:
				completes++
				require.NotNil(t, e.Report)
			}
		}
		require.Equal(t, 4, starts)
		require.Equal(t, 4, completes)
		require.Equal(t, EventEvaluationStart, events[0].EventType)
		require.Equal(t, EventEvaluationComplete, events[len(events)-1].EventType)
	})
}
