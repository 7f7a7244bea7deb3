package etl

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/BartekS5/airline-etl/pkg/utils"
)

// splitRecord decodes a single CSV line and checks it has at least min fields.
// Extra trailing fields are ignored.
func splitRecord(line string, min int) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(fields) < min {
		return nil, &ParseError{Err: fmt.Errorf("expected at least %d fields, got %d", min, len(fields))}
	}
	return fields, nil
}

func intField(name, raw string) (int64, error) {
	v, err := utils.ParseInt(raw)
	if err != nil {
		return 0, &ParseError{Field: name, Value: raw, Err: err}
	}
	return v, nil
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

func atLine(err error, n int) error {
	if pe, ok := err.(*ParseError); ok && pe.Line == 0 {
		pe.Line = n
	}
	return err
}
