package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelcat/internal/relink"
)

func newRelinkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "relink <entry-id> <tmdb-id>",
		Short: "Reassign the TMDB identity of an entry (0 unlinks it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			newID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tmdb id %q", args[1])
			}

			return ctx.withLock(func() error {
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

				entry, err := relink.New(cat, provider, logger).Relink(cmd.Context(), entryID, newID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if entry.TMDBID == 0 {
					fmt.Fprintf(out, "Entry %d unlinked\n", entry.ID)
				} else {
					fmt.Fprintf(out, "Entry %d relinked to TMDB %d (%s)\n", entry.ID, entry.TMDBID, entry.Title)
				}
				return nil
			})
		},
	}
}
