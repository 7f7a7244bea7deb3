// Package cli wires the job into a cobra command tree.
package cli

import (
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "airline-etl",
		Short: "Enrich daily flight records with airport metadata",
		Long: `airline-etl reads an airport reference CSV and a flight CSV, joins each
flight to its origin and destination airport, and appends the enriched rows
to the flight fact table. Job settings come from ETL_* environment variables.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.AddCommand(NewRunCmd(), NewSchemaCmd())

	return rootCmd
}
