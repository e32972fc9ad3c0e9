// Package migrations embeds the goose SQL migrations so the binaries can
// apply them without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var MigrationsFS embed.FS
