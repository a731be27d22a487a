// Package migrations embeds the schema for every supported SQL driver, one
// directory per driver name.
package migrations

import "embed"

//go:embed sqlite3/*.sql postgres/*.sql
var FS embed.FS
