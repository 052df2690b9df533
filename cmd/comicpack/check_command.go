package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"comicpack/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir...]",
		Short: "Check the environment and source directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			configMsg := ctx.configPath
			configKind := statusOK
			if !ctx.configSeen {
				configMsg += " (defaults)"
				configKind = statusInfo
			}
			fmt.Fprintln(out, renderStatusLine("Config", configKind, configMsg, colorize))
			fmt.Fprintln(out, renderStatusLine("Format", statusInfo, cfg.Archive.Format, colorize))
			fmt.Fprintln(out, renderStatusLine("Workers", statusInfo, fmt.Sprintf("%d", cfg.Workers()), colorize))
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg, args)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, preflightKind(r), r.Detail, colorize))
			}
			return preflight.Required(results)
		},
	}
}
