// AngelaMos | 2026
// embed.go

// Package migrations embeds the schema so binaries can migrate without
// files on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
