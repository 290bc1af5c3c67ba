package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/milldrew/journeylog/internal/bot"
)

var (
	servePort int
	servePoll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long:  "Runs the webhook server, or with --poll a getUpdates long-poll loop, feeding share links into the journey resolver.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Telegram.Token == "" {
			return eris.New("telegram token not configured")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := bot.NewClient(cfg.Telegram.Token)
		handler := bot.NewHandler(bot.HandlerOptions{
			API:            api,
			Resolver:       env.Resolver,
			Store:          env.Store,
			AllowedChatIDs: cfg.Telegram.AllowedChatIDs,
			Location:       env.Loc,
			ExportDir:      cfg.ExportDir,
		})

		if servePoll {
			poller := bot.NewPoller(api, handler, time.Duration(cfg.Telegram.PollTimeout)*time.Second)
			zap.L().Info("starting long-poll loop")
			err := poller.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: bot.NewServer(handler, cfg.Telegram.WebhookSecret).Router(),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting webhook server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&servePoll, "poll", false, "use getUpdates long polling instead of a webhook")
	rootCmd.AddCommand(serveCmd)
}
