package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/finsight/internal/export"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Rebuild the aggregate insight tables from stored results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.ValidateStorage(); err != nil {
			return err
		}
		store, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}
		rows, err := export.Aggregate(ctx, store, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d insight rows written to %s and %s\n", rows, export.AggregateCSV, export.AggregateXLSX)
		return nil
	},
}
