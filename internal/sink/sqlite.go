package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/BartekS5/airline-etl/internal/etl"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// SQLite appends rows with a prepared INSERT inside one transaction per batch.
type SQLite struct {
	db        *sql.DB
	table     string
	insert    string
	validator *etl.Validator
}

func NewSQLite(db *sql.DB, table string) *SQLite {
	cols := models.ColumnNames()
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(DialectSQLite, c)
		marks[i] = "?"
	}
	return &SQLite{
		db:    db,
		table: table,
		insert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(DialectSQLite, table), strings.Join(quoted, ", "), strings.Join(marks, ", ")),
		validator: etl.NewValidator(models.OutputSchema),
	}
}

func (s *SQLite) Name() string { return "sqlite:" + s.table }

func (s *SQLite) Write(ctx context.Context, recs []models.EnrichedFlight) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows, err := s.validator.Rows(recs)
	if err != nil {
		return 0, writeErr(s.Name(), len(recs), err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, writeErr(s.Name(), len(rows), fmt.Errorf("begin tx: %w", err))
	}
	stmt, err := tx.PrepareContext(ctx, s.insert)
	if err != nil {
		_ = tx.Rollback()
		return 0, writeErr(s.Name(), len(rows), fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, writeErr(s.Name(), len(rows), fmt.Errorf("insert row %d: %w", i, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, writeErr(s.Name(), len(rows), fmt.Errorf("commit: %w", err))
	}
	return int64(len(rows)), nil
}

// Exec runs a statement outside of a batch, e.g. DDL.
func (s *SQLite) Exec(ctx context.Context, query string) error {
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Columns lists the destination table's columns.
func (s *SQLite) Columns(ctx context.Context) ([]string, error) {
	return sqlColumns(ctx, s.db, "SELECT * FROM "+quoteIdent(DialectSQLite, s.table)+" LIMIT 0")
}

func sqlColumns(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}
