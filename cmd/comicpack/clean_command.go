package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"comicpack/internal/logging"
	"comicpack/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean <dir>...",
		Short: "Remove archive temps and stale locks left by interrupted runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			result := staging.CleanStale(cmd.Context(), args, maxAge, logging.NewComponentLogger(logger, "staging"))

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, lo := range result.Removed {
				fmt.Fprintln(out, renderStatusLine(string(lo.Kind), statusOK, "removed "+lo.Path, colorize))
			}
			for _, lo := range result.Kept {
				kind := statusInfo
				message := "kept " + lo.Path
				if lo.Kind == staging.KindPageTemp {
					kind = statusWarn
					message = "page under temporary name: " + lo.Path
				}
				fmt.Fprintln(out, renderStatusLine(string(lo.Kind), kind, message, colorize))
			}
			for _, e := range result.Errors {
				fmt.Fprintln(out, renderStatusLine("error", statusError, fmt.Sprintf("%s: %v", e.Path, e.Error), colorize))
			}
			if len(result.Removed)+len(result.Kept)+len(result.Errors) == 0 {
				fmt.Fprintln(out, "Nothing to clean")
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d leftovers could not be cleaned", len(result.Errors))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Only remove archive temps older than this")
	return cmd
}
