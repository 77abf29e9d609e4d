// Package migrations embeds the SQL migrations of the desktop SQLite store.
package migrations

import "embed"

// FS holds the embedded migration files
//
//go:embed *.sql
var FS embed.FS
