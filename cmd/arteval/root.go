package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// LoggerNameEnvVar optionally tags every log record with a logger name, so
// harnesses that multiplex several evaluators can tell the streams apart.
const LoggerNameEnvVar = "EVAL_LOGGER_NAME"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arteval",
		Short: "Arteval - oracle checks for artifact reproduction attempts",
		Long: `Arteval scores an agent's attempt to reproduce a research artifact.

It runs idempotent, time-bounded oracle checks over four stages
(environment setup, build/install, benchmark preparation, experiment
runs) and reports one point per passing stage, 0-4 total.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		if name := os.Getenv(LoggerNameEnvVar); name != "" {
			slog.SetDefault(slog.Default().With("logger", name))
		}
	}

	// Add subcommands
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newValidateCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
