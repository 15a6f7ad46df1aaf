package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelcat/internal/catalog"
	"reelcat/internal/dupes"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var dupesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			entries, err := cat.ListEntries(cmd.Context())
			if err != nil {
				return err
			}
			if dupesOnly {
				entries = dupes.Detect(entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				if dupesOnly {
					fmt.Fprintln(out, "No duplicates found")
				} else {
					fmt.Fprintln(out, "Catalog is empty")
				}
				return nil
			}

			headers := []string{"ID", "Title", "Type", "TMDB", "Size (MB)", "Duration", "Exists", "Path"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.Title,
					string(entry.MediaType),
					formatTMDBID(entry.TMDBID),
					strconv.FormatFloat(entry.FileSizeMB, 'f', 2, 64),
					entry.Duration,
					yesNo(entry.FileExists),
					entryPath(entry),
				})
			}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			fmt.Fprintf(out, "%d entries\n", len(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dupesOnly, "dupes", false, "Show only probable duplicates")
	return cmd
}

func formatTMDBID(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func entryPath(entry catalog.Entry) string {
	if entry.RelativePath == "" {
		return entry.FileName
	}
	return entry.RelativePath + "/" + entry.FileName
}
