package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"comicpack/internal/collate"
	"comicpack/internal/config"
	"comicpack/internal/deps"
	"comicpack/internal/discovery"
	"comicpack/internal/faults"
	"comicpack/internal/history"
	"comicpack/internal/logging"
	"comicpack/internal/preflight"
	"comicpack/internal/sevenzip"
)

type packFlags struct {
	dryRun    bool
	json      bool
	recursive bool
	format    string
	workers   int
	parallel  int
	verify    bool
	noHistory bool
}

func newPackCommand(ctx *commandContext) *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "pack <dir>...",
		Short: "Rename pages canonically and pack each directory into an archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(cmd, ctx, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Show the rename plan without touching files")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Emit a JSON report")
	cmd.Flags().BoolVarP(&flags.recursive, "recursive", "r", false, "Pack every image directory below the arguments")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "Archive format override (cbz, cb7, auto)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Compression workers per directory (0 uses config)")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 0, "Directories packed at once (0 uses config)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Read every archive back after writing it")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history ledger")
	return cmd
}

func applyPackFlags(cfg *config.Config, flags packFlags) error {
	if format := strings.ToLower(strings.TrimSpace(flags.format)); format != "" {
		switch format {
		case config.FormatCBZ, config.FormatCB7, config.FormatAuto:
			cfg.Archive.Format = format
		default:
			return fmt.Errorf("--format: unsupported value %q (want cbz, cb7 or auto)", flags.format)
		}
	}
	if flags.workers < 0 || flags.parallel < 0 {
		return errors.New("--workers and --parallel must not be negative")
	}
	if flags.workers > 0 {
		cfg.Compression.Workers = flags.workers
	}
	if flags.parallel > 0 {
		cfg.Workflow.ParallelDirectories = flags.parallel
	}
	if flags.verify {
		cfg.Archive.Verify = true
	}
	return nil
}

func runPack(cmd *cobra.Command, ctx *commandContext, flags packFlags, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	run := *cfg
	if err := applyPackFlags(&run, flags); err != nil {
		return err
	}
	baseLogger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	logger := logging.NewComponentLogger(baseLogger, "cli")

	opts, err := collate.OptionsFromConfig(&run)
	if err != nil {
		return err
	}
	opts.DryRun = flags.dryRun

	dirs, err := discovery.ExpandDirectories(args, opts.Extensions, flags.recursive)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return faults.Wrap(faults.ErrNothingToDo, "", faults.StageDiscover, "no image directories found", nil)
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	if err := preflight.Required(preflight.RunAll(runCtx, &run, dirs)); err != nil {
		return err
	}

	var options []collate.Option
	if run.Archive.Format != config.FormatCBZ {
		if archiver := newSevenZip(&run, logger); archiver != nil {
			options = append(options, collate.WithSevenZip(archiver))
		}
	}

	if run.History.Enabled && !flags.noHistory && !flags.dryRun {
		store, err := history.Open(run.History.Path)
		if err != nil {
			logger.Warn("history unavailable; run will not be recorded",
				logging.String(logging.FieldEventType, "history_unavailable"),
				logging.String(logging.FieldErrorHint, "check history.path or pass --no-history"),
				logging.Error(err),
			)
		} else {
			defer store.Close()
			options = append(options, collate.WithRecorder(store))
		}
	}

	collator := collate.New(opts, baseLogger, options...)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String(logging.FieldRunID, collator.RunID()),
		logging.Int("directories", len(dirs)),
		logging.String("format", run.Archive.Format),
		logging.Bool("dry_run", flags.dryRun),
	)

	outcomes := collator.RunAll(runCtx, dirs)
	summary := collate.Summarize(outcomes)

	if flags.json {
		if err := writeJSON(cmd.OutOrStdout(), newPackReport(collator.RunID(), flags.dryRun, outcomes, summary)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), renderPackReport(outcomes, summary, flags.dryRun, shouldColorize(cmd.OutOrStdout())))
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d directories failed", summary.Failed, len(outcomes))
	}
	if err := runCtx.Err(); err != nil {
		return err
	}
	return nil
}

// newSevenZip returns nil when 7-Zip cannot be found; the collator then
// fails cb7 directories and degrades auto to cbz.
func newSevenZip(cfg *config.Config, logger *slog.Logger) collate.Archiver {
	binary, err := deps.ResolveSevenZip(cfg.SevenZip.Binary)
	if err != nil {
		logger.Debug("7-Zip not resolved", logging.Error(err))
		return nil
	}
	client, err := sevenzip.New(binary, cfg.SevenZip.TimeoutSeconds)
	if err != nil {
		logger.Debug("7-Zip client unavailable", logging.Error(err))
		return nil
	}
	return client
}
