// Package db embeds the schema migrations
package db

import "embed"

// Migrations holds the ordered schema files; file name order is apply order
//
//go:embed migrations/*.sql
var Migrations embed.FS
