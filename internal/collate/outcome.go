package collate

import (
	"time"

	"comicpack/internal/assembler"
	"comicpack/internal/faults"
	"comicpack/internal/history"
	"comicpack/internal/naming"
)

// Status is the result of one directory.
type Status string

const (
	StatusPacked  Status = "packed"
	StatusPlanned Status = "planned"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// PageReport describes one page of a packed directory.
type PageReport struct {
	Source        string `json:"source"`
	Target        string `json:"target"`
	Size          int64  `json:"size"`
	Payload       int64  `json:"payload"`
	Precompressed bool   `json:"precompressed"`
}

// Outcome records what happened to one directory.
type Outcome struct {
	Directory  string
	Archive    string
	Format     string
	Status     Status
	Reason     string
	Plan       *naming.Plan
	Pages      []PageReport
	Stats      assembler.Stats
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed reports whether the directory counts as a failure.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

func (o Outcome) record(runID string) *history.Record {
	rec := &history.Record{
		RunID:        runID,
		Directory:    o.Directory,
		Archive:      o.Archive,
		Format:       o.Format,
		Members:      o.Stats.Members,
		Compressed:   o.Stats.Compressed,
		SourceBytes:  o.Stats.SourceBytes,
		ArchiveBytes: o.Stats.ArchiveBytes,
		StartedAt:    o.StartedAt,
		FinishedAt:   o.FinishedAt,
	}
	if o.Plan != nil {
		rec.Strategy = string(o.Plan.Strategy)
	}
	switch o.Status {
	case StatusPacked:
		rec.Status = history.StatusSucceeded
	case StatusSkipped:
		rec.Status = history.StatusSkipped
		rec.ErrorMessage = o.Reason
	default:
		rec.Status = history.StatusFailed
	}
	if o.Err != nil && o.Status == StatusFailed {
		rec.ErrorCategory = faults.Category(o.Err)
		rec.ErrorMessage = o.Err.Error()
	}
	return rec
}

// Summary totals a run.
type Summary struct {
	Packed       int
	Planned      int
	Skipped      int
	Failed       int
	SourceBytes  int64
	ArchiveBytes int64
}

// Summarize totals outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case StatusPacked:
			s.Packed++
			s.SourceBytes += o.Stats.SourceBytes
			s.ArchiveBytes += o.Stats.ArchiveBytes
		case StatusPlanned:
			s.Planned++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
