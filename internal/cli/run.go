package cli

import (
	"github.com/spf13/cobra"
)

type RunOptions struct {
	DryRun      bool
	Workers     int
	BatchSize   int
	CreateTable bool
}

func NewRunCmd() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the flight enrichment job once",
		RunE: func(c *cobra.Command, args []string) error {
			return runJob(c, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and enrich without writing to the sink")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Enrichment workers (overrides ETL_WORKERS)")
	cmd.Flags().IntVarP(&opts.BatchSize, "batch-size", "b", 0, "Rows per sink write (overrides ETL_BATCH_SIZE)")
	cmd.Flags().BoolVar(&opts.CreateTable, "create-table", false, "Create the output table if it does not exist (SQL sinks)")

	return cmd
}

func NewSchemaCmd() *cobra.Command {
	var dialect, table string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print CREATE TABLE DDL for the output table",
		RunE: func(c *cobra.Command, args []string) error {
			return printSchema(c, dialect, table)
		},
	}

	cmd.Flags().StringVarP(&dialect, "dialect", "d", "postgres", "SQL dialect: postgres, mssql or sqlite")
	cmd.Flags().StringVarP(&table, "table", "t", "", "Output table id (defaults to ETL_OUTPUT_TABLE)")

	return cmd
}
