package migrations

import "embed"

// FS contains the versioned SQL migrations, named
// NNNNNN_description.{up,down}.sql as golang-migrate expects.
//
//go:embed *.sql
var FS embed.FS
