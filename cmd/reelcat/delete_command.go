package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete an entry and clean up its orphaned associations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entryID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}

			return ctx.withLock(func() error {
				cat, err := ctx.openCatalog()
				if err != nil {
					return err
				}
				defer cat.Close()

				entry, err := cat.EntryByID(cmd.Context(), entryID)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("no entry with id %d", entryID)
				}
				if err := cat.PurgeEntry(cmd.Context(), *entry); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d (%s)\n", entry.ID, entry.Title)
				return nil
			})
		},
	}
}
