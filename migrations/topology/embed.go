// Package topology provides embedded SQL migrations for the topology store.
package topology

import "embed"

// FS embeds all .sql migration files in this directory.
//
//go:embed *.sql
var FS embed.FS
