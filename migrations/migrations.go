// Package migrations ships the SQL schema of the Postgres history backend.
package migrations

import "embed"

// FS holds the numbered .sql files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
