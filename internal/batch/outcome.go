package batch

import (
	"time"

	"github.com/jackzampolin/scribe/internal/output"
	"github.com/jackzampolin/scribe/internal/providers"
)

// Status marks how one input fared.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Entry is the per-file record in an Outcome: either a success with
// its written artifact paths or a failure with its cause.
type Entry struct {
	Input     string            `json:"input"`
	ID        string            `json:"id"`
	Status    Status            `json:"status"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
	Artifacts *output.Artifacts `json:"artifacts,omitempty"`
	Pages     int               `json:"pages,omitempty"`
	Duration  time.Duration     `json:"duration"`

	err error
}

// Err returns the underlying failure, nil for successes.
func (e *Entry) Err() error {
	return e.err
}

// Outcome is the ordered result of one batch: exactly one entry per
// input file, in input order.
type Outcome struct {
	Entries []Entry `json:"entries"`
}

// Succeeded returns the number of successful entries.
func (o *Outcome) Succeeded() int {
	n := 0
	for i := range o.Entries {
		if o.Entries[i].Status == StatusSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of failed entries.
func (o *Outcome) Failed() int {
	return len(o.Entries) - o.Succeeded()
}

// AllSucceeded reports whether every file in the batch succeeded.
func (o *Outcome) AllSucceeded() bool {
	return o.Failed() == 0
}

// Summary is the structured report printed by the CLI.
type Summary struct {
	Total     int     `json:"total"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	Entries   []Entry `json:"entries"`
}

// Summary builds the report for this outcome.
func (o *Outcome) Summary() Summary {
	return Summary{
		Total:     len(o.Entries),
		Succeeded: o.Succeeded(),
		Failed:    o.Failed(),
		Entries:   o.Entries,
	}
}

// failedEntry builds a failure record preserving the error kind.
func failedEntry(input, id string, start time.Time, err error) Entry {
	return Entry{
		Input:     input,
		ID:        id,
		Status:    StatusFailed,
		Error:     err.Error(),
		ErrorKind: providers.KindOf(err).String(),
		Duration:  time.Since(start),
		err:       err,
	}
}
