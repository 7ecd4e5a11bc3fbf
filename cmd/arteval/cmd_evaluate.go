package main

import (
	"log/slog"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/entry"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/orchestration"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/reporting"
	"github.com/spf13/cobra"
)

func newEvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <entry.yaml>",
		Short: "Run all stage oracles for an entry bundle and print the score",
		Long: `Evaluate loads an entry bundle, runs its four stage oracles in order,
and prints per-stage PASS/FAIL plus the final score.

Stages are independent: every stage runs even when an earlier one fails.
The exit code is 0 whenever evaluation completed; the score is the
signal. Non-zero exit codes mean the bundle itself could not be loaded.`,
		Args: cobra.ExactArgs(1),
		RunE: runEvaluate,
	}
	cmd.Flags().StringP("output", "o", "", "Write the scorecard as JSON (a .gz suffix compresses)")
	cmd.Flags().String("junit", "", "Write a JUnit XML report")
	cmd.Flags().Bool("verbose", false, "Print captured output for failed requirements")
	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := entry.Load(args[0])
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	junitPath, _ := cmd.Flags().GetString("junit")
	verbose, _ := cmd.Flags().GetBool("verbose")

	reporter := newConsoleReporter(cmd.OutOrStdout(), verbose)

	evaluator := orchestration.NewEvaluator(cfg,
		orchestration.WithLogger(slog.Default()),
		orchestration.WithProgressListener(reporter.Listen))

	card := evaluator.Evaluate(cmd.Context())
	reporter.Summary(card)

	if outputPath != "" {
		if err := reporting.WriteScorecard(card, outputPath); err != nil {
			return err
		}
	}
	if junitPath != "" {
		if err := reporting.WriteJUnitXML(card, junitPath); err != nil {
			return err
		}
	}
	return nil
}
