// Package db embeds the SQL migrations so release builds can apply them
// without the source tree.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
