package history

import "time"

// Status is the outcome of one directory.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Record is one directory outcome.
type Record struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	Directory     string    `json:"directory"`
	Archive       string    `json:"archive,omitempty"`
	Format        string    `json:"format,omitempty"`
	Status        Status    `json:"status"`
	Strategy      string    `json:"strategy,omitempty"`
	Members       int       `json:"members"`
	Compressed    int       `json:"compressed"`
	SourceBytes   int64     `json:"source_bytes"`
	ArchiveBytes  int64     `json:"archive_bytes"`
	ErrorCategory string    `json:"error_category,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// Duration is the wall time the directory took.
func (r Record) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of rows; zero means no cap.
	Limit     int
	Directory string
	Status    Status
}
