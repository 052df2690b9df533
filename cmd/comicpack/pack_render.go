package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"comicpack/internal/collate"
	"comicpack/internal/faults"
	"comicpack/internal/logging"
	"comicpack/internal/naming"
)

type packReport struct {
	RunID       string            `json:"run_id"`
	DryRun      bool              `json:"dry_run"`
	Directories []directoryReport `json:"directories"`
	Summary     summaryReport     `json:"summary"`
}

type directoryReport struct {
	Directory     string               `json:"directory"`
	Archive       string               `json:"archive,omitempty"`
	Format        string               `json:"format,omitempty"`
	Status        collate.Status       `json:"status"`
	Reason        string               `json:"reason,omitempty"`
	Strategy      string               `json:"strategy,omitempty"`
	Renames       []renameReport       `json:"renames,omitempty"`
	Pages         []collate.PageReport `json:"pages,omitempty"`
	Members       int                  `json:"members,omitempty"`
	Compressed    int                  `json:"compressed,omitempty"`
	SourceBytes   int64                `json:"source_bytes,omitempty"`
	ArchiveBytes  int64                `json:"archive_bytes,omitempty"`
	ErrorCategory string               `json:"error_category,omitempty"`
	Error         string               `json:"error,omitempty"`
	DurationMS    int64                `json:"duration_ms"`
}

type renameReport struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Unchanged bool   `json:"unchanged,omitempty"`
}

type summaryReport struct {
	Packed       int   `json:"packed"`
	Planned      int   `json:"planned"`
	Skipped      int   `json:"skipped"`
	Failed       int   `json:"failed"`
	SourceBytes  int64 `json:"source_bytes"`
	ArchiveBytes int64 `json:"archive_bytes"`
}

func newPackReport(runID string, dryRun bool, outcomes []collate.Outcome, summary collate.Summary) packReport {
	report := packReport{
		RunID:       runID,
		DryRun:      dryRun,
		Directories: make([]directoryReport, 0, len(outcomes)),
		Summary: summaryReport{
			Packed:       summary.Packed,
			Planned:      summary.Planned,
			Skipped:      summary.Skipped,
			Failed:       summary.Failed,
			SourceBytes:  summary.SourceBytes,
			ArchiveBytes: summary.ArchiveBytes,
		},
	}
	for _, o := range outcomes {
		d := directoryReport{
			Directory:    o.Directory,
			Archive:      o.Archive,
			Format:       o.Format,
			Status:       o.Status,
			Reason:       o.Reason,
			Pages:        o.Pages,
			Members:      o.Stats.Members,
			Compressed:   o.Stats.Compressed,
			SourceBytes:  o.Stats.SourceBytes,
			ArchiveBytes: o.Stats.ArchiveBytes,
			DurationMS:   o.FinishedAt.Sub(o.StartedAt).Milliseconds(),
		}
		if o.Plan != nil {
			d.Strategy = string(o.Plan.Strategy)
			if dryRun {
				d.Renames = renamesFor(o.Plan)
			}
		}
		if o.Err != nil && o.Failed() {
			d.ErrorCategory = faults.Category(o.Err)
			d.Error = o.Err.Error()
		}
		report.Directories = append(report.Directories, d)
	}
	return report
}

func renamesFor(plan *naming.Plan) []renameReport {
	out := make([]renameReport, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		out = append(out, renameReport{Source: e.Source, Target: e.Target, Unchanged: e.Unchanged})
	}
	return out
}

func renderPackReport(outcomes []collate.Outcome, summary collate.Summary, dryRun, colorize bool) string {
	var b strings.Builder

	if dryRun {
		for _, o := range outcomes {
			if o.Plan == nil {
				continue
			}
			for _, line := range renderSectionHeader(o.Directory, colorize) {
				b.WriteString(line + "\n")
			}
			fmt.Fprintf(&b, "Strategy: %s\n", o.Plan.Strategy)
			rows := make([][]string, 0, len(o.Plan.Entries))
			for _, e := range o.Plan.Entries {
				target := e.Target
				if e.Unchanged {
					target += " (unchanged)"
				}
				rows = append(rows, []string{strconv.Itoa(e.Index + 1), e.Source, target})
			}
			b.WriteString(renderTable(planColumns, rows, nil))
			b.WriteString("\n\n")
		}
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.Directory,
			string(o.Status),
			o.Format,
			pagesCell(o),
			bytesCell(o.Stats.SourceBytes),
			bytesCell(o.Stats.ArchiveBytes),
			detailCell(o),
		})
	}
	b.WriteString(renderTable(outcomeColumns, rows, nil))
	b.WriteString("\n")

	message := fmt.Sprintf("%d packed, %d planned, %d skipped, %d failed", summary.Packed, summary.Planned, summary.Skipped, summary.Failed)
	if summary.ArchiveBytes > 0 {
		message += fmt.Sprintf(" (%s into %s)", logging.FormatBytes(summary.SourceBytes), logging.FormatBytes(summary.ArchiveBytes))
	}
	b.WriteString(renderStatusLine("Summary", summaryKind(summary), message, colorize))
	b.WriteString("\n")
	return b.String()
}

func pagesCell(o collate.Outcome) string {
	if o.Stats.Members > 0 {
		return fmt.Sprintf("%d (%d deflated)", o.Stats.Members, o.Stats.Compressed)
	}
	if o.Plan != nil {
		return strconv.Itoa(len(o.Plan.Entries))
	}
	return "-"
}

func bytesCell(n int64) string {
	if n <= 0 {
		return "-"
	}
	return logging.FormatBytes(n)
}

func detailCell(o collate.Outcome) string {
	switch {
	case o.Failed() && o.Err != nil:
		return fmt.Sprintf("%s: %v", faults.Category(o.Err), o.Err)
	case o.Reason != "":
		return o.Reason
	case o.Archive != "":
		return fmt.Sprintf("%s in %s", o.Archive, o.FinishedAt.Sub(o.StartedAt).Round(time.Millisecond))
	}
	return ""
}
