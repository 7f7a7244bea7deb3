// Package sink implements append-only writers for the flight fact table.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/etl"
	"github.com/BartekS5/airline-etl/pkg/database"
	"github.com/BartekS5/airline-etl/pkg/models"
)

// Sink kinds accepted by Open.
const (
	KindStdout   = "stdout"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindMSSQL    = "mssql"
	KindMongo    = "mongo"
	KindBigQuery = "bigquery"
)

// Options selects and configures a sink.
type Options struct {
	Kind        string
	DSN         string
	Table       config.TableRef
	CreateTable bool
	Out         io.Writer // stdout sink only; defaults to os.Stdout

	// BigQuery only. Project bills the load jobs when Table has none; load
	// files are staged under TempLocation, or StagingLocation.
	Project         string
	TempLocation    string
	StagingLocation string
}

// columnLister is implemented by sinks whose destination has a fixed set of
// columns that can be checked before the first write.
type columnLister interface {
	Columns(ctx context.Context) ([]string, error)
}

// Open connects the sink named by opts.Kind and checks that the destination
// table has the output columns. The returned func releases its connection.
func Open(ctx context.Context, opts Options) (etl.Sink, func(), error) {
	switch opts.Kind {
	case KindSQLite, KindPostgres, KindMSSQL, KindMongo:
		if opts.DSN == "" {
			return nil, nil, fmt.Errorf("sink %s: ETL_SINK_DSN is required", opts.Kind)
		}
	}

	switch opts.Kind {
	case KindStdout, "":
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return NewJSONLines(out, opts.Table.String()), func() {}, nil

	case KindSQLite:
		db, err := database.ConnectSQLite(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		s := NewSQLite(db, opts.Table.Table)
		if err := prepareTable(ctx, opts, s, s.Exec); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, func() { db.Close() }, nil

	case KindPostgres:
		pool, err := database.ConnectPostgres(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		s := NewPostgres(pool, opts.Table)
		if err := prepareTable(ctx, opts, s, s.Exec); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil

	case KindMSSQL:
		db, err := database.ConnectSQL(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		s := NewMSSQL(db, opts.Table)
		if err := prepareTable(ctx, opts, s, s.Exec); err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, func() { db.Close() }, nil

	case KindMongo:
		client, err := database.ConnectMongo(ctx, opts.DSN)
		if err != nil {
			return nil, nil, err
		}
		s := NewMongo(client, opts.Table)
		return s, func() { _ = client.Disconnect(context.Background()) }, nil

	case KindBigQuery:
		return openBigQuery(ctx, opts)

	default:
		return nil, nil, fmt.Errorf("unknown sink kind %q", opts.Kind)
	}
}

type sqlSink interface {
	etl.Sink
	columnLister
}

// prepareTable runs the CREATE TABLE DDL when asked to, then checks columns.
func prepareTable(ctx context.Context, opts Options, s sqlSink, exec func(context.Context, string) error) error {
	if opts.CreateTable {
		ddl, err := CreateTableSQL(Dialect(opts.Kind), opts.Table)
		if err != nil {
			return err
		}
		if err := exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", opts.Table.Qualified(), err)
		}
	}
	return checkColumns(ctx, s.Name(), s)
}

func checkColumns(ctx context.Context, name string, cl columnLister) error {
	cols, err := cl.Columns(ctx)
	if err != nil {
		return writeErr(name, 0, fmt.Errorf("read table columns: %w", err))
	}
	if err := etl.NewValidator(models.OutputSchema).ValidateColumns(cols); err != nil {
		return writeErr(name, 0, err)
	}
	return nil
}

func openBigQuery(ctx context.Context, opts Options) (etl.Sink, func(), error) {
	if opts.Table.Dataset == "" {
		return nil, nil, fmt.Errorf("sink %s: output table %s needs a dataset", KindBigQuery, opts.Table)
	}
	staging, err := stagingLocation(opts)
	if err != nil {
		return nil, nil, err
	}
	project := opts.Table.Project
	if project == "" {
		project = opts.Project
	}

	bq, err := database.ConnectBigQuery(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	gcs, err := database.ConnectStorage(ctx)
	if err != nil {
		bq.Close()
		return nil, nil, err
	}
	release := func() {
		gcs.Close()
		bq.Close()
	}

	runID := time.Now().UTC().Format("20060102T150405") + "-" + uuid.NewString()[:8]
	s := NewBigQuery(bq, gcs, opts.Table, staging, runID)
	if opts.CreateTable {
		if err := s.EnsureTable(ctx); err != nil {
			release()
			return nil, nil, writeErr(s.Name(), 0, fmt.Errorf("create table: %w", err))
		}
	}
	if err := checkColumns(ctx, s.Name(), s); err != nil {
		release()
		return nil, nil, err
	}
	return s, func() {
		cctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Cleanup(cctx)
		release()
	}, nil
}

func writeErr(name string, rows int, err error) error {
	return &etl.WriteError{Sink: name, Rows: rows, Err: err}
}
