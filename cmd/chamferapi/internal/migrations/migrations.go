package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects every schema migration registered by the files in this package.
var Migrations = migrate.NewMigrations()
