// Package migrations embeds the goose SQL migrations for each supported
// database. Files live under postgres/ and sqlite/ respectively.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
