// Package pgstore implements the notifications storage interfaces on
// PostgreSQL with pgx/v5. The schema lives in the embedded Migrations
// filesystem and is applied with pg.Migrate.
package pgstore
