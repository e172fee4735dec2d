// Package property provides embedded SQL migrations for the property store.
package property

import "embed"

// FS embeds all .sql migration files in this directory.
//
//go:embed *.sql
var FS embed.FS
