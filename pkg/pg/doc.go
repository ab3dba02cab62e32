// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config, retrying with exponential
// backoff until the database answers a ping. Migrate applies goose
// migrations from an fs.FS, typically one embedded by the store that owns
// the schema:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, log); err != nil {
//		return err
//	}
//
// Healthcheck adapts the pool to a func(context.Context) error readiness
// probe, and the Is*Error helpers classify driver errors without leaking
// pgconn types to callers.
package pg
