package collate

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"comicpack/internal/assembler"
	"comicpack/internal/config"
	"comicpack/internal/discovery"
	"comicpack/internal/encoder"
	"comicpack/internal/faults"
	"comicpack/internal/history"
	"comicpack/internal/logging"
	"comicpack/internal/naming"
	"comicpack/internal/natsort"
	"comicpack/internal/sevenzip"
	"comicpack/internal/stageexec"
)

// Archiver builds a cb7 archive from canonical page files.
type Archiver interface {
	Create(ctx context.Context, out string, files []string) error
}

// Recorder persists directory outcomes.
type Recorder interface {
	Add(ctx context.Context, rec *history.Record) error
}

// Option configures a Collator.
type Option func(*Collator)

// WithSevenZip enables cb7 output through archiver.
func WithSevenZip(archiver Archiver) Option {
	return func(c *Collator) {
		c.sevenZip = archiver
	}
}

// WithRecorder stores every outcome in rec.
func WithRecorder(rec Recorder) Option {
	return func(c *Collator) {
		c.recorder = rec
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(c *Collator) {
		if id != "" {
			c.runID = id
		}
	}
}

// Collator runs the pipeline with fixed options.
type Collator struct {
	opts     Options
	logger   *slog.Logger
	sevenZip Archiver
	recorder Recorder
	runID    string
}

var _ Archiver = (*sevenzip.Client)(nil)

// New constructs a Collator.
func New(opts Options, logger *slog.Logger, options ...Option) *Collator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}
	if opts.Policy == nil {
		opts.Policy = encoder.DefaultPolicy()
	}
	if opts.Format == "" {
		opts.Format = config.FormatCBZ
	}
	c := &Collator{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "collate"),
		runID:  uuid.NewString(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// RunID returns the identifier stamped on every log line and ledger row.
func (c *Collator) RunID() string { return c.runID }

// OutputPath returns the archive path for dir with the given extension.
func OutputPath(dir, format string) string {
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+"."+format)
}

// Run processes one directory.
func (c *Collator) Run(ctx context.Context, dir string) Outcome {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	} else {
		dir = filepath.Clean(dir)
	}
	ctx = faults.WithDirectory(faults.WithRunID(ctx, c.runID), dir)
	logger := logging.WithContext(ctx, c.logger)

	out := Outcome{Directory: dir, StartedAt: time.Now()}
	err := c.run(ctx, logger, &out)
	out.FinishedAt = time.Now()

	switch {
	case err == nil:
	case !faults.Fatal(err):
		out.Status = StatusSkipped
		out.Reason = skipReason(err)
	default:
		out.Status = StatusFailed
		out.Err = err
	}

	if out.Status == StatusPacked {
		logger.Info("archive written",
			logging.String("archive", out.Archive),
			logging.Int("members", out.Stats.Members),
			logging.Int("compressed", out.Stats.Compressed),
			logging.Bytes("source", out.Stats.SourceBytes),
			logging.Bytes("size", out.Stats.ArchiveBytes),
			logging.Duration("elapsed", out.FinishedAt.Sub(out.StartedAt).Round(time.Millisecond)),
		)
	}

	if c.recorder != nil && out.Status != StatusPlanned {
		// A cancelled run still deserves a ledger row.
		recCtx := context.WithoutCancel(ctx)
		if err := c.recorder.Add(recCtx, out.record(c.runID)); err != nil {
			logger.Warn("history record failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "history_write_failed"),
				logging.String(logging.FieldErrorHint, "run 'comicpack check' to inspect the history path"),
			)
		}
	}
	return out
}

func (c *Collator) run(ctx context.Context, logger *slog.Logger, out *Outcome) error {
	dir := out.Directory

	info, err := os.Stat(dir)
	if err != nil {
		return faults.Wrap(faults.ErrInput, dir, faults.StageDiscover, "stat", err)
	}
	if !info.IsDir() {
		return faults.Wrap(faults.ErrInput, dir, faults.StageDiscover, "not a directory", nil)
	}

	if c.opts.Lock && !c.opts.DryRun {
		lock, ok, err := acquireLock(dir)
		if err != nil {
			return faults.Wrap(faults.ErrInput, dir, faults.StagePreflight, "lock directory", err)
		}
		if !ok {
			return faults.Wrap(faults.ErrInput, dir, faults.StagePreflight,
				"directory is locked by another comicpack process ("+LockPath(dir)+")", nil)
		}
		defer func() {
			if err := lock.release(); err != nil {
				logger.Warn("release lock failed", logging.Error(err))
			}
		}()
	}

	var images []discovery.Image
	err = stageexec.Run(ctx, logger, faults.StageDiscover, func(context.Context, *slog.Logger) error {
		var err error
		images, err = discovery.ListImages(dir, c.opts.Extensions)
		return err
	})
	if err != nil {
		return err
	}

	format, err := c.resolveFormat(logger, dir, discovery.TotalSize(images))
	if err != nil {
		return err
	}
	out.Format = format
	out.Archive = OutputPath(dir, format)

	if _, err := os.Lstat(out.Archive); err == nil {
		if c.opts.SkipExisting {
			return faults.Wrap(faults.ErrNothingToDo, dir, faults.StagePreflight, "archive already exists", nil)
		}
		return faults.Wrap(faults.ErrAssembly, dir, faults.StagePreflight,
			"archive "+out.Archive+" already exists", fs.ErrExist)
	}

	err = stageexec.Run(ctx, logger, faults.StageSort, func(context.Context, *slog.Logger) error {
		if err := natsort.SortFunc(images, sortName); err != nil {
			return faults.Wrap(faults.ErrInput, dir, faults.StageSort, "natural order", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	sources := make([]string, len(images))
	for i, img := range images {
		sources[i] = img.Name
	}
	plan, err := naming.NewPlan(dir, sources, naming.Options{UpperExt: c.opts.UpperExt})
	if err != nil {
		return err
	}
	out.Plan = plan

	if c.opts.DryRun {
		out.Status = StatusPlanned
		return nil
	}

	err = stageexec.Run(ctx, logger, faults.StageRename, func(ctx context.Context, logger *slog.Logger) error {
		logger.Debug("applying rename plan",
			logging.String("strategy", string(plan.Strategy)),
			logging.Int("pending", plan.Pending()),
			logging.Int("width", plan.Width),
		)
		if err := plan.Apply(ctx); err != nil {
			return faults.Wrap(faults.ErrRename, dir, faults.StageRename, "apply "+string(plan.Strategy)+" plan", err)
		}
		for _, e := range plan.Entries {
			if !e.Unchanged {
				logger.Debug("page renamed", logging.String("source", e.Source), logging.String("target", e.Target))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	targets := plan.Targets()
	if format == config.FormatCB7 {
		return c.packSevenZip(ctx, logger, out, images, targets)
	}
	return c.packZip(ctx, logger, out, targets)
}

func (c *Collator) packZip(ctx context.Context, logger *slog.Logger, out *Outcome, targets []string) error {
	dir := out.Directory
	jobs := make([]encoder.Job, len(targets))
	for i, target := range targets {
		name := filepath.Base(target)
		jobs[i] = encoder.Job{
			Index: i,
			Path:  target,
			Name:  name,
			Mode:  c.opts.Policy.ModeFor(filepath.Ext(name)),
		}
	}

	var members []encoder.Member
	err := stageexec.Run(ctx, logger, faults.StageEncode, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		members, err = encoder.EncodeAll(ctx, jobs, c.opts.Workers, func(m encoder.Member) {
			logger.Info("page encoded",
				logging.String("source", out.Plan.Entries[m.Index].Source),
				logging.String("target", m.Name),
				logging.Int64("size", m.Size),
				logging.Int64("payload", m.StoredSize()),
				logging.String("mode", string(m.Mode)),
				logging.Bool("precompressed", m.Precompressed),
			)
		})
		if err != nil && !errors.Is(err, faults.ErrEncode) {
			err = faults.Wrap(faults.ErrEncode, dir, faults.StageEncode, "encode pages", err)
		}
		return err
	})
	if err != nil {
		return err
	}

	err = stageexec.Run(ctx, logger, faults.StageAssemble, func(ctx context.Context, _ *slog.Logger) error {
		var err error
		out.Stats, err = assembler.Write(ctx, out.Archive, members)
		return err
	})
	if err != nil {
		return err
	}

	out.Pages = make([]PageReport, len(members))
	for i, m := range members {
		out.Pages[i] = PageReport{
			Source:        out.Plan.Entries[i].Source,
			Target:        m.Name,
			Size:          m.Size,
			Payload:       m.StoredSize(),
			Precompressed: m.Precompressed,
		}
	}

	if c.opts.Verify {
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = filepath.Base(t)
		}
		err = stageexec.Run(ctx, logger, faults.StageVerify, func(context.Context, *slog.Logger) error {
			return assembler.Verify(out.Archive, names)
		})
		if err != nil {
			return err
		}
	}

	out.Status = StatusPacked
	return nil
}

func (c *Collator) packSevenZip(ctx context.Context, logger *slog.Logger, out *Outcome, images []discovery.Image, targets []string) error {
	err := stageexec.Run(ctx, logger, faults.StageAssemble, func(ctx context.Context, _ *slog.Logger) error {
		return c.sevenZip.Create(ctx, out.Archive, targets)
	})
	if err != nil {
		return err
	}

	info, err := os.Stat(out.Archive)
	if err != nil {
		return faults.Wrap(faults.ErrAssembly, out.Directory, faults.StageAssemble, "stat archive", err)
	}
	out.Pages = make([]PageReport, len(images))
	for i, img := range images {
		out.Pages[i] = PageReport{
			Source:  img.Name,
			Target:  filepath.Base(targets[i]),
			Size:    img.Size,
			Payload: img.Size,
		}
	}
	out.Stats = assembler.Stats{
		Members:      len(images),
		Stored:       len(images),
		SourceBytes:  discovery.TotalSize(images),
		PayloadBytes: discovery.TotalSize(images),
		ArchiveBytes: info.Size(),
	}
	out.Status = StatusPacked
	return nil
}

// resolveFormat picks the container for a directory. Auto selects cb7 for
// directories no larger than the threshold when 7-Zip is available and cbz
// otherwise.
func (c *Collator) resolveFormat(logger *slog.Logger, dir string, total int64) (string, error) {
	switch c.opts.Format {
	case config.FormatCB7:
		if c.sevenZip == nil {
			return "", faults.Wrap(faults.ErrEnvironment, dir, faults.StagePreflight, "cb7 output requires 7-Zip", nil)
		}
		return config.FormatCB7, nil
	case config.FormatAuto:
		if total > c.opts.AutoThreshold {
			return config.FormatCBZ, nil
		}
		if c.sevenZip == nil {
			logger.Warn("7-Zip unavailable; writing cbz",
				logging.String(logging.FieldEventType, "format_fallback"),
				logging.String(logging.FieldErrorHint, "install 7-Zip or set sevenzip.binary"),
			)
			return config.FormatCBZ, nil
		}
		return config.FormatCB7, nil
	default:
		return config.FormatCBZ, nil
	}
}

func skipReason(err error) string {
	var se *faults.StageError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return strings.TrimSpace(err.Error())
}

// sortName orders a page parked by an interrupted run under its former name,
// so the marker's digits never reach the natural-order key.
func sortName(img discovery.Image) string {
	name, _ := naming.Parked(img.Name)
	return name
}
