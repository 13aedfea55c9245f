// Package migrations embeds the SQL schema migrations for the Postgres
// side tables (payment ledger and appointment outbox).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
