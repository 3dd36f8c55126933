package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sheetfold/sheetfold/internal/store"
	"github.com/sheetfold/sheetfold/internal/viewed"
)

func newViewedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewed",
		Short: "Inspect or clear stored viewed state",
	}
	cmd.AddCommand(newViewedListCommand(), newViewedClearCommand())
	return cmd
}

func newViewedListCommand() *cobra.Command {
	var dbPath, source string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List viewed-state keys, or the rows viewed for one source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()
			if source == "" {
				items, err := db.ListItems(viewed.Key(""))
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "KEY\tSIZE\tUPDATED")
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\n", it.Key, humanize.Bytes(uint64(it.SizeBytes)), humanize.Time(it.UpdatedUTC))
				}
				return nil
			}

			raw, found, err := db.GetItem(viewed.Key(source))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no viewed state for source %q", source)
			}
			var entries viewed.Entries
			if err := json.Unmarshal([]byte(raw), &entries); err != nil {
				return fmt.Errorf("decode viewed state: %w", err)
			}
			rows := make([]string, 0, len(entries))
			for row := range entries {
				rows = append(rows, row)
			}
			sort.Strings(rows)
			fmt.Fprintln(w, "ROW\tLAST VIEWED")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\n", row, viewed.FormatTime(time.UnixMilli(entries[row]).UTC()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "sheetfold.db", "SQLite database for viewed state")
	cmd.Flags().StringVar(&source, "source", "", "Data source id (spreadsheet id)")
	return cmd
}

func newViewedClearCommand() *cobra.Command {
	var dbPath, source string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget every viewed row for one source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				return fmt.Errorf("--source is required")
			}
			db, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.RemoveItem(viewed.Key(source)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared viewed state for %s\n", source)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "sheetfold.db", "SQLite database for viewed state")
	cmd.Flags().StringVar(&source, "source", "", "Data source id (spreadsheet id)")
	return cmd
}
