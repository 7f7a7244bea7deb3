package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BartekS5/airline-etl/internal/config"
	"github.com/BartekS5/airline-etl/internal/etl"
	"github.com/BartekS5/airline-etl/internal/metrics"
	"github.com/BartekS5/airline-etl/internal/sink"
	"github.com/BartekS5/airline-etl/internal/source"
	"github.com/BartekS5/airline-etl/pkg/logger"
)

func runJob(cmd *cobra.Command, opts *RunOptions) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	if opts.Workers > 0 {
		cfg.Workers = opts.Workers
	}
	if opts.BatchSize > 0 {
		cfg.BatchSize = opts.BatchSize
	}

	table, err := config.ParseTableRef(cfg.OutputTable)
	if err != nil {
		return err
	}
	airports, err := source.FromLocation(cfg.AirportsInput)
	if err != nil {
		return err
	}
	flights, err := source.FromLocation(cfg.FlightsInput)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"runner":           cfg.Runner,
		"project":          cfg.Project,
		"region":           cfg.Region,
		"temp_location":    cfg.TempLocation,
		"staging_location": cfg.StagingLocation,
		"output_table":     table.String(),
		"sink":             cfg.SinkKind,
	}).Info("Job configuration loaded")

	rec, err := metrics.NewPrometheus("airline_etl", cfg.PushgatewayURL)
	if err != nil {
		return err
	}

	var out etl.Sink
	if !opts.DryRun {
		s, closeSink, err := sink.Open(ctx, sink.Options{
			Kind:        cfg.SinkKind,
			DSN:         cfg.SinkDSN,
			Table:       table,
			CreateTable: opts.CreateTable,
			Out:         cmd.OutOrStdout(),

			Project:         cfg.Project,
			TempLocation:    cfg.TempLocation,
			StagingLocation: cfg.StagingLocation,
		})
		if err != nil {
			return err
		}
		defer closeSink()
		out = s
	}

	pipeline := etl.NewPipeline(airports, flights, out, cfg.Workers, cfg.BatchSize, opts.DryRun)
	pipeline.Metrics = rec

	_, runErr := pipeline.Run(ctx)
	if err := rec.Flush(); err != nil {
		logger.Warnf("Could not push metrics: %v", err)
	}
	return runErr
}

func printSchema(cmd *cobra.Command, dialect, table string) error {
	if table == "" {
		table = os.Getenv("ETL_OUTPUT_TABLE")
	}
	if table == "" {
		return fmt.Errorf("no table given: use --table or set ETL_OUTPUT_TABLE")
	}
	ref, err := config.ParseTableRef(table)
	if err != nil {
		return err
	}
	ddl, err := sink.CreateTableSQL(sink.Dialect(dialect), ref)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ddl+";")
	return nil
}
