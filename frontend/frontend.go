package frontend

import "embed"

// StaticFiles holds the built web client served by the HTTP controller
//
//go:embed dist
var StaticFiles embed.FS
