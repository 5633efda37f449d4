package server

import (
	"embed"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// Embedded frontend of the application. Any path not matched by an API
// route is served from here, falling back to index.html so client-side
// routing works.
//
//go:embed public
var assets embed.FS

func (s *Server) handleAsset(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}

	name := strings.TrimPrefix(c.Request.URL.Path, "/")
	if name == "" {
		name = "index.html"
	}

	data, err := assets.ReadFile("public/" + name)
	if err != nil {
		index, err := assets.ReadFile("public/index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html", index)
		return
	}

	c.Data(http.StatusOK, contentTypeFor(name), data)
}

// contentTypeFor maps asset extensions to their content types.
func contentTypeFor(name string) string {
	switch path.Ext(name) {
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".html":
		return "text/html"
	default:
		return "text/plain"
	}
}
