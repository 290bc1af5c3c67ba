package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var journeysLimit int

var journeysCmd = &cobra.Command{
	Use:   "journeys",
	Short: "List logged journeys, newest first",
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

		rows, err := st.ListJourneys(ctx, journeysLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PROCESSED\tTYPE\tFROM\tTO\tMILES")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s %s\t%s\n",
				row.Processed, row.VisitType,
				row.OriginTown, row.OriginPC,
				row.DestTown, row.DestPC,
				row.Miles,
			)
		}
		return w.Flush()
	},
}

func init() {
	journeysCmd.Flags().IntVar(&journeysLimit, "limit", 20, "maximum journeys to list")
	rootCmd.AddCommand(journeysCmd)
}
