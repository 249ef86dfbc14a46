// Package migrations embeds the versioned SQL schema for each database driver.
package migrations

import "embed"

// FS holds sqlite/, postgres/ and localstore/ migration directories.
//
//go:embed sqlite/*.sql postgres/*.sql localstore/*.sql
var FS embed.FS
