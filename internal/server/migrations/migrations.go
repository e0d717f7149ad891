// Package migrations embeds the goose SQL migrations for the SQL user store.
// The schema is kept portable between PostgreSQL and SQLite.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
