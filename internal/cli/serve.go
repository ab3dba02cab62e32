package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/carenotify/internal/app"
	"github.com/dmitrymomot/carenotify/pkg/httpserver"
	"github.com/dmitrymomot/carenotify/pkg/logger"
)

const cleanupTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the realtime endpoints and the dispatch API",
		Long: "Connects the configured storage, starts the WebSocket and SSE hubs and serves " +
			"/ws, /sse, /v1/dispatch, /healthz and /readyz until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := app.LoadSettings()
			if err != nil {
				return err
			}
			log := newLogger(settings.App)

			a, err := app.New(ctx, settings, log)
			if err != nil {
				return err
			}
			a.Start()

			srv := httpserver.NewFromConfig(settings.HTTP, a.ServerOptions()...)
			runErr := srv.Run(ctx, a.Handler())
			if errors.Is(runErr, httpserver.ErrStart) {
				// The listener never opened, so no shutdown hook ran.
				cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
				defer cancel()
				if err := a.Close(cleanupCtx); err != nil {
					log.ErrorContext(ctx, "cleanup failed", logger.Error(err))
				}
			}
			return runErr
		},
	}
}
