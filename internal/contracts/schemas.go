package contracts

import "embed"

//go:embed events requests
var SchemasFS embed.FS
