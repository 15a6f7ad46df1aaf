package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelcat/internal/fillup"
)

func newFillupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "fillup <grouping-id>",
		Short: "Create placeholder entries for the gaps in a series or collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupingID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid grouping id %q", args[0])
			}

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
				provider, err := ctx.requireProvider()
				if err != nil {
					return err
				}

				summary, err := fillup.New(cfg, cat, provider, logger).FillUp(cmd.Context(), groupingID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d placeholder entries\n", summary.Created)
				return nil
			})
		},
	}
}
