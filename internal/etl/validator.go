package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/airline-etl/pkg/models"
	"github.com/BartekS5/airline-etl/pkg/utils"
)

// Validator checks a destination table and the rows bound for it against the
// output schema.
type Validator struct {
	Schema []models.Column
}

func NewValidator(schema []models.Column) *Validator {
	return &Validator{Schema: schema}
}

// ValidateRow checks the row width and that each value matches its column type.
func (v *Validator) ValidateRow(row []any) error {
	if len(row) != len(v.Schema) {
		return fmt.Errorf("row has %d values, schema has %d columns", len(row), len(v.Schema))
	}
	for i, col := range v.Schema {
		switch col.Type {
		case models.TypeString:
			if _, ok := row[i].(string); !ok {
				return fmt.Errorf("column %s: want STRING, got %T", col.Name, row[i])
			}
		case models.TypeInteger:
			if !utils.IsInteger(row[i]) {
				return fmt.Errorf("column %s: want INTEGER, got %T", col.Name, row[i])
			}
		default:
			return fmt.Errorf("column %s: unsupported type %s", col.Name, col.Type)
		}
	}
	return nil
}

// ValidateColumns checks that a destination table has every schema column.
// Names match case-insensitively; extra table columns are allowed.
func (v *Validator) ValidateColumns(cols []string) error {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[strings.ToLower(c)] = true
	}
	var missing []string
	for _, col := range v.Schema {
		if !have[strings.ToLower(col.Name)] {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table lacks columns %s", strings.Join(missing, ", "))
	}
	return nil
}

// Rows converts records to schema-ordered rows, validating each one.
func (v *Validator) Rows(recs []models.EnrichedFlight) ([][]any, error) {
	rows := make([][]any, len(recs))
	for i, rec := range recs {
		row := rec.Row()
		if err := v.ValidateRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}
