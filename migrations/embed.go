// Package migrations embeds the goose SQL migrations for the postgres
// backend so the server binary can apply them without shipping files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
