// Package migrations embeds the SQL schema. The server applies it on start
// when CAREHUB_AUTO_MIGRATE is set; integration tests apply it to their
// container.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
