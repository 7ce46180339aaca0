package importers

import "fmt"

// OutcomeKind is the terminal state of one row.
type OutcomeKind int

const (
	Imported OutcomeKind = iota
	Skipped
	DuplicateRow
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Skipped:
		return "skipped"
	case DuplicateRow:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return "imported"
	}
}

// Outcome records what happened to one row.
type Outcome struct {
	Row      int
	Kind     OutcomeKind
	Reason   string
	Key      string
	Conflict bool
}

// RowIssue is a human-readable problem with a row. Row 0 refers to the
// file as a whole.
type RowIssue struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result summarises an import run.
type Result struct {
	Success           bool       `json:"success"`
	Message           string     `json:"message"`
	TotalRecords      int        `json:"total_records"`
	SuccessfulRecords int        `json:"successful_records"`
	FailedRecords     int        `json:"failed_records"`
	DuplicateRecords  int        `json:"duplicate_records"`
	SkippedRecords    int        `json:"skipped_records"`
	ConflictRecords   int        `json:"conflict_records"`
	Errors            []RowIssue `json:"errors"`
	ErrorsTruncated   int        `json:"errors_truncated,omitempty"`
	BatchID           string     `json:"batch_id,omitempty"`
	Cancelled         bool       `json:"cancelled,omitempty"`
}

// Balanced reports whether every row is accounted for exactly once.
func (r *Result) Balanced() bool {
	return r.TotalRecords == r.SuccessfulRecords+r.FailedRecords+r.DuplicateRecords+r.SkippedRecords
}

// FailedResult is the result of a run rejected before any row was read.
func FailedResult(err error) *Result {
	return &Result{
		Success: false,
		Message: err.Error(),
		Errors:  []RowIssue{{Row: 0, Error: err.Error()}},
	}
}

// Report accumulates outcomes into a Result.
type Report struct {
	maxErrors int
	tolerance float64
	result    Result
}

// NewReport creates a report. maxErrors <= 0 keeps every error. A failure
// tolerance <= 0 means any failed row fails the run.
func NewReport(batchID string, maxErrors int, tolerance float64) *Report {
	return &Report{
		maxErrors: maxErrors,
		tolerance: tolerance,
		result:    Result{BatchID: batchID, Errors: []RowIssue{}},
	}
}

// Add records one outcome.
func (r *Report) Add(o Outcome) {
	res := &r.result
	res.TotalRecords++

	switch o.Kind {
	case Imported:
		res.SuccessfulRecords++
	case DuplicateRow:
		res.DuplicateRecords++
	case Skipped:
		res.SkippedRecords++
		if o.Conflict {
			res.ConflictRecords++
		}
		r.issue(o.Row, o.Reason)
	case Failed:
		res.FailedRecords++
		r.issue(o.Row, o.Reason)
	}
}

func (r *Report) issue(row int, msg string) {
	if r.maxErrors > 0 && len(r.result.Errors) >= r.maxErrors {
		r.result.ErrorsTruncated++
		return
	}
	r.result.Errors = append(r.result.Errors, RowIssue{Row: row, Error: msg})
}

// Processed returns the number of outcomes recorded so far.
func (r *Report) Processed() int { return r.result.TotalRecords }

// Finish computes success and the summary message.
func (r *Report) Finish(cancelled bool) *Result {
	res := r.result
	res.Cancelled = cancelled

	res.Success = res.SuccessfulRecords > 0 && r.withinTolerance(res) && !cancelled

	res.Message = fmt.Sprintf(
		"Imported %d of %d records (%d duplicate, %d failed, %d skipped)",
		res.SuccessfulRecords, res.TotalRecords, res.DuplicateRecords, res.FailedRecords, res.SkippedRecords,
	)
	if res.ConflictRecords > 0 {
		res.Message += fmt.Sprintf("; %d conflicting records need review", res.ConflictRecords)
	}
	if res.ErrorsTruncated > 0 {
		res.Message += fmt.Sprintf("; %d further errors not shown", res.ErrorsTruncated)
	}
	if cancelled {
		res.Message = "Import cancelled. " + res.Message
	}
	return &res
}

func (r *Report) withinTolerance(res Result) bool {
	if r.tolerance <= 0 {
		return res.FailedRecords == 0
	}
	if res.TotalRecords == 0 {
		return true
	}
	return float64(res.FailedRecords)/float64(res.TotalRecords) < r.tolerance
}
