package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/carenotify/internal/app"
	"github.com/dmitrymomot/carenotify/pkg/config"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/notifications/pgstore"
	"github.com/dmitrymomot/carenotify/pkg/pg"
)

func newMigrateCmd() *cobra.Command {
	var templates string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Applies the embedded PostgreSQL migrations and optionally seeds message templates from a YAML file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var appCfg app.Config
			if err := config.Load(&appCfg); err != nil {
				return err
			}
			var pgCfg pg.Config
			if err := config.Load(&pgCfg); err != nil {
				return err
			}
			log := newLogger(appCfg)

			pool, err := pg.Connect(ctx, pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.Migrate(ctx, pool, pgCfg, pgstore.Migrations, log); err != nil {
				return err
			}
			log.InfoContext(ctx, "migrations applied")

			if templates == "" {
				templates = appCfg.TemplatesFile
			}
			if templates == "" {
				return nil
			}
			set, err := notifications.LoadTemplatesYAML(templates)
			if err != nil {
				return err
			}
			if err := pgstore.New(pool).SeedTemplates(ctx, set); err != nil {
				return fmt.Errorf("seed templates: %w", err)
			}
			log.InfoContext(ctx, "templates seeded", "count", len(set))
			return nil
		},
	}
	cmd.Flags().StringVar(&templates, "templates", "", "YAML file with message templates to upsert (defaults to TEMPLATES_FILE)")
	return cmd
}
