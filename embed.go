package scanio

import "embed"

// Migrations holds the embedded goose SQL migrations applied to the local
// history database on startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS
