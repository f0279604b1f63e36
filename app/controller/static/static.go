// Package static serves the stylesheet for the task page
package static

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed assets/app.css
var assets embed.FS

type (
	Handler struct {
		css []byte
	}
)

func NewHandler() *Handler {
	return &Handler{css: mustRead(assets, "assets/app.css")}
}

// mustRead panics when an embedded asset is missing; the binary is broken.
func mustRead(fsys fs.FS, name string) []byte {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		panic(fmt.Sprintf("static: %v", err))
	}
	return b
}

func (h Handler) CSS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", h.css)
}

func Register(g *echo.Group) {
	h := NewHandler()

	g.GET("/static/app.css", h.CSS)
}
