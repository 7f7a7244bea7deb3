package etl

import (
	"fmt"
)

// ParseError reports a malformed input line. It is fatal for the job.
type ParseError struct {
	Source string // input name, set by the pipeline
	Line   int    // 1-based line number, 0 when unknown
	Field  string // field name, empty for CSV-level errors
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	loc := e.Source
	if loc == "" {
		loc = "input"
	}
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Line)
	}
	if e.Field == "" {
		return fmt.Sprintf("parse %s: %v", loc, e.Err)
	}
	return fmt.Sprintf("parse %s: field %s %q: %v", loc, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WriteError reports a rejected write to the sink. It is fatal for the job.
type WriteError struct {
	Sink string
	Rows int
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %d rows to %s: %v", e.Rows, e.Sink, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
