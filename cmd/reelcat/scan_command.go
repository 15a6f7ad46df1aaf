package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelcat/internal/probe"
	"reelcat/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Reconcile the catalog with the media roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				logger, err := ctx.newLogger()
				if err != nil {
					return err
				}
				cat, err := ctx.openCatalog()
				if err != nil {
					return err
				}
				defer cat.Close()
				provider, err := ctx.newProvider()
				if err != nil {
					return err
				}

				engine := scanner.New(cfg, cat, probe.New(cfg.Scan.FFprobeBinary), provider, logger)
				summary, err := engine.Run(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Scan %s finished\n", summary.RunID)
				fmt.Fprintf(out, "  found again: %d\n", summary.MarkedFound)
				fmt.Fprintf(out, "  missing:     %d\n", summary.MarkedMissing)
				fmt.Fprintf(out, "  analyzed:    %d\n", summary.Analyzed)
				fmt.Fprintf(out, "  skipped:     %d\n", summary.Skipped)
				fmt.Fprintf(out, "  failed:      %d\n", summary.Failed)
				return nil
			})
		},
	}
}
