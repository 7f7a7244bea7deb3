package sink

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/etl"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// MSSQL appends rows through the TDS bulk copy API inside a transaction.
type MSSQL struct {
	db        *sql.DB
	ref       config.TableRef
	validator *etl.Validator
}

func NewMSSQL(db *sql.DB, ref config.TableRef) *MSSQL {
	return &MSSQL{db: db, ref: ref, validator: etl.NewValidator(models.OutputSchema)}
}

func (m *MSSQL) Name() string { return "mssql:" + m.ref.Qualified() }

func (m *MSSQL) Write(ctx context.Context, recs []models.EnrichedFlight) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows, err := m.validator.Rows(recs)
	if err != nil {
		return 0, writeErr(m.Name(), len(recs), err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, writeErr(m.Name(), len(rows), fmt.Errorf("begin tx: %w", err))
	}
	rollback := func() { _ = tx.Rollback() }

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(msFQN(m.ref), mssql.BulkOptions{}, models.ColumnNames()...))
	if err != nil {
		rollback()
		return 0, writeErr(m.Name(), len(rows), fmt.Errorf("prepare bulk: %w", err))
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, writeErr(m.Name(), len(rows), fmt.Errorf("bulk row %d: %w", i, err))
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, writeErr(m.Name(), len(rows), fmt.Errorf("bulk finalize: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, writeErr(m.Name(), len(rows), fmt.Errorf("rows affected: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return 0, writeErr(m.Name(), len(rows), fmt.Errorf("commit: %w", err))
	}
	return n, nil
}

func (m *MSSQL) Exec(ctx context.Context, query string) error {
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *MSSQL) Columns(ctx context.Context) ([]string, error) {
	return sqlColumns(ctx, m.db, "SELECT TOP 0 * FROM "+msFQN(m.ref))
}
