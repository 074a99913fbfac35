// Package migrations embeds the Postgres schema so binaries can apply it
// without shipping SQL files alongside them.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS
