package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"comicpack/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the run ledger",
	}
	cmd.AddCommand(newHistoryListCommand(ctx))
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var dir string
	var status string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded directory outcomes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := history.ListOptions{Limit: limit, Directory: strings.TrimSpace(dir)}
			switch s := history.Status(strings.ToLower(strings.TrimSpace(status))); s {
			case "":
			case history.StatusSucceeded, history.StatusFailed, history.StatusSkipped:
				opts.Status = s
			default:
				return fmt.Errorf("--status: unsupported value %q", status)
			}
			return ctx.withHistory(func(store *history.Store) error {
				records, err := store.List(cmd.Context(), opts)
				if err != nil {
					return err
				}
				if asJSON {
					if records == nil {
						records = []history.Record{}
					}
					return writeJSON(cmd.OutOrStdout(), records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderHistory(records))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().StringVar(&dir, "dir", "", "Only show this directory")
	cmd.Flags().StringVar(&status, "status", "", "Only show succeeded, failed or skipped rows")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history rows\n", n)
				return nil
			})
		},
	}
}

func renderHistory(records []history.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		detail := r.ErrorMessage
		if r.ErrorCategory != "" {
			detail = r.ErrorCategory + ": " + detail
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.FinishedAt.Local().Format(time.DateTime),
			r.Directory,
			string(r.Status),
			r.Format,
			strconv.Itoa(r.Members),
			bytesCell(r.ArchiveBytes),
			r.Duration().Round(time.Millisecond).String(),
			detail,
		})
	}
	return renderTable(historyColumns, rows, nil)
}
