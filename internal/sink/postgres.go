package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/etl"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// Postgres appends rows with COPY FROM. Each batch is a single COPY, so it
// lands entirely or not at all.
type Postgres struct {
	pool      *pgxpool.Pool
	ref       config.TableRef
	validator *etl.Validator
}

func NewPostgres(pool *pgxpool.Pool, ref config.TableRef) *Postgres {
	return &Postgres{pool: pool, ref: ref, validator: etl.NewValidator(models.OutputSchema)}
}

func (p *Postgres) Name() string { return "postgres:" + p.ref.Qualified() }

func (p *Postgres) Write(ctx context.Context, recs []models.EnrichedFlight) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	rows, err := p.validator.Rows(recs)
	if err != nil {
		return 0, writeErr(p.Name(), len(recs), err)
	}

	n, err := p.pool.CopyFrom(ctx, pgTable(p.ref), models.ColumnNames(), pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			err = fmt.Errorf("copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
		} else {
			err = fmt.Errorf("copy: %w", err)
		}
		return 0, writeErr(p.Name(), len(rows), err)
	}
	return n, nil
}

func (p *Postgres) Exec(ctx context.Context, query string) error {
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *Postgres) Columns(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, "SELECT * FROM "+pgTable(p.ref).Sanitize()+" LIMIT 0")
	if err != nil {
		return nil, err
	}
	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	// Server errors such as a missing table surface once rows are closed.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}
