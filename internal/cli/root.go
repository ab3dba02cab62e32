// Package cli implements the notifyd command line.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/carenotify/internal/app"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/requestid"
	"github.com/dmitrymomot/carenotify/pkg/tenant"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notifyd",
		Short:         "Hospital notification delivery service",
		Long:          "notifyd delivers tenant notifications over WebSocket, SSE, email and SMS with per-user preferences and retries.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		slog.Error("notifyd failed", logger.Error(err))
	}
	return err
}

func newLogger(cfg app.Config) *slog.Logger {
	l := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)
	logger.SetAsDefault(l)
	return l
}
