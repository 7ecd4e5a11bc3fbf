package models

import (
	"time"
)

// Stage identifies one of the four artifact-evaluation stages.
type Stage string

const (
	StageEnvSetup       Stage = "env_setup"
	StageBuildInstall   Stage = "build_install"
	StagePrepBenchmark  Stage = "prep_benchmark"
	StageRunExperiments Stage = "run_experiments"
)

// Stages returns all stages in canonical evaluation order. Order is fixed:
// a stage's requirements may assume earlier stages were at least attempted.
func Stages() []Stage {
	return []Stage{
		StageEnvSetup,
		StageBuildInstall,
		StagePrepBenchmark,
		StageRunExperiments,
	}
}

// Valid reports whether s names a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageEnvSetup, StageBuildInstall, StagePrepBenchmark, StageRunExperiments:
		return true
	}
	return false
}

// MaxScore is the highest achievable scorecard score: one point per stage.
const MaxScore = 4

// Scorecard is the complete result of evaluating one artifact entry.
type Scorecard struct {
	RunID     string    `json:"run_id"`
	Entry     string    `json:"entry"`
	Timestamp time.Time `json:"timestamp"`
	// Score is the number of stages that passed, 0–4.
	Score int `json:"score"`
	// StageScores maps each stage name to 1 (passed) or 0 (failed).
	StageScores map[Stage]int  `json:"stages"`
	Reports     []OracleReport `json:"reports"`
	DurationMs  int64          `json:"duration_ms"`
}

// Report returns the report for the given stage, or nil if absent.
func (s *Scorecard) Report(stage Stage) *OracleReport {
	for i := range s.Reports {
		if s.Reports[i].Stage == stage {
			return &s.Reports[i]
		}
	}
	return nil
}
