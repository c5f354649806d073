package importer

import (
	"fmt"
	"io"
	"strings"
)

// Row maps a header to its raw cell value (string, number or nil).
type Row map[string]any

// Table is a decoded upload.
type Table struct {
	FileName  string
	Digest    string
	Headers   []string
	Rows      []Row
	TotalRows int
}

// Decoder turns an uploaded file into a Table. Errors are fatal for the whole batch.
type Decoder interface {
	Decode(r io.Reader, fileName string) (*Table, error)
}

type Mode string

const (
	// ModeAssignment creates unseen accounts as overdue, ready to hand to callers.
	ModeAssignment Mode = "assignment"
	// ModeBulk creates unseen accounts as unassigned.
	ModeBulk Mode = "bulk"
)

func ParseMode(raw string, fallback Mode) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return fallback, nil
	case ModeAssignment, ModeBulk:
		return m, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", raw)
	}
}

type Operation string

const (
	OperationImport   Operation = "import"
	OperationMarkPaid Operation = "mark_paid"
)

type outcome string

const (
	outcomeImported outcome = "imported"
	outcomeMarked   outcome = "marked"
	outcomeUpdated  outcome = "updated"
	outcomeSkipped  outcome = "skipped"
	outcomeErrored  outcome = "errored"
)

const unknownAccount = "unknown"

type RowError struct {
	Row           int    `json:"row"`
	AccountNumber string `json:"accountNumber"`
	Error         string `json:"error"`
}

// Result is the per-batch summary. Every row lands in exactly one counter or in Errors.
type Result struct {
	BatchID   string     `json:"batchId"`
	Operation Operation  `json:"operation"`
	FileName  string     `json:"fileName,omitempty"`
	Imported  int        `json:"imported"`
	Marked    int        `json:"marked"`
	Updated   int        `json:"updated"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
}

func (r *Result) ErrorCount() int {
	return len(r.Errors)
}

func (r *Result) record(o outcome) {
	switch o {
	case outcomeImported:
		r.Imported++
	case outcomeMarked:
		r.Marked++
	case outcomeUpdated:
		r.Updated++
	case outcomeSkipped:
		r.Skipped++
	}
}
