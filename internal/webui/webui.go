// Package webui embeds the browser control panel served at the root path.
package webui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var content embed.FS

// Handler serves the embedded single-page panel.
func Handler() http.Handler {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// embed layout is fixed at build time
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
