// Package db embeds the SQL migrations for every supported dialect.
//
// Migrations live under migrations/<driver>/ and follow the golang-migrate
// naming scheme NNNN_name.up.sql / NNNN_name.down.sql.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
