// Package migrations embeds the site.db schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
