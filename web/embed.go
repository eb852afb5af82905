// Package web provides the embedded demo page served at the server root.
package web

import (
	"embed"
	"io/fs"
)

//go:embed dist/*
var distFS embed.FS

// DistFS returns a filesystem rooted at the dist/ directory.
func DistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}
