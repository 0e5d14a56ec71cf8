package migrations

import "embed"

// FS contains embedded goose migrations for the PostgreSQL store.
//
//go:embed *.sql
var FS embed.FS
