package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milldrew/journeylog/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journey log to an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		rows, err := st.ListJourneys(ctx, 0)
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(exportOut, rows); err != nil {
			return err
		}
		zap.L().Info("export written", zap.String("path", exportOut), zap.Int("rows", len(rows)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "journeys.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
