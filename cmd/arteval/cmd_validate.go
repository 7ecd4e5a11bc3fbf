package main

import (
	"fmt"

	"github.com/manthanawgan/system-intelligence-benchmark/internal/entry"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/models"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/oracle"
	"github.com/manthanawgan/system-intelligence-benchmark/internal/requirements"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <entry.yaml>",
		Short: "Check that an entry bundle is well-formed without running anything",
		Long: `Validate loads an entry bundle and constructs every declared requirement,
reporting configuration problems (unresolvable paths, malformed params)
without executing any checks.`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := entry.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	builder := oracle.NewBuilder(cfg)

	var problems int
	for _, stage := range models.Stages() {
		reqs, err := builder.Stage(stage)
		if err != nil {
			problems++
			fmt.Fprintf(out, "%-16s ERROR  %s\n", stage, err)
			continue
		}

		fmt.Fprintf(out, "%-16s OK     %d requirements\n", stage, len(reqs))
		for _, req := range reqs {
			// An always-failing requirement at validation time means
			// config-derived data (e.g. a manifest) was bad.
			if f, ok := req.(*requirements.Fail); ok {
				problems++
				fmt.Fprintf(out, "  warning: %s would always fail\n", f.Name())
			}
		}
	}

	if problems > 0 {
		return fmt.Errorf("%s: %d problem(s) found", cfg.Name, problems)
	}
	fmt.Fprintf(out, "%s: ok\n", cfg.Name)
	return nil
}
