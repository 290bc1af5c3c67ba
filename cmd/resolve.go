package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/milldrew/journeylog/internal/model"
)

var (
	resolveNote   string
	resolveNoSave bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <link>",
	Short: "Resolve one share link into a journey record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Resolver.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		if !resolveNoSave {
			row := model.NewJourneyRow(rec, args[0], resolveNote, time.Now().In(env.Loc))
			stored, err := env.Store.AppendJourney(ctx, row)
			if err != nil {
				return err
			}
			zap.L().Info("journey logged", zap.String("id", stored.ID))
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveNote, "note", "", "free-text note stored with the journey")
	resolveCmd.Flags().BoolVar(&resolveNoSave, "no-save", false, "resolve without writing to the journey log")
	rootCmd.AddCommand(resolveCmd)
}
