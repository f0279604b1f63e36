// Package health is for the health route
package health

import (
	"context"
	"net/http"
	"time"

	"taskdeck/version"

	"github.com/labstack/echo/v4"
)

const pingTimeout = 2 * time.Second

// Pinger checks a dependency the process talks to.
type Pinger interface {
	Ping(ctx context.Context) error
}

type (
	Handler struct {
		backend Pinger
	}
	OkResponse struct {
		Ok      bool   `json:"ok"`
		Version string `json:"version"`
		Backend string `json:"backend,omitempty"`
	}
)

// NewHandler returns a health handler. A nil backend leaves the backend
// field out of the response.
func NewHandler(backend Pinger) *Handler {
	return &Handler{backend: backend}
}

// GET always answers 200 while the process serves requests. An unreachable
// backend is reported, not treated as unhealthy.
func (h Handler) GET(c echo.Context) error {
	ok := OkResponse{
		Ok:      true,
		Version: version.Version,
	}

	if h.backend != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
		defer cancel()

		ok.Backend = "up"
		if err := h.backend.Ping(ctx); err != nil {
			c.Logger().Warnf("backend ping failed: %v", err)
			ok.Backend = "down"
		}
	}
	return c.JSON(http.StatusOK, ok)
}

func Register(g *echo.Group, backend Pinger) {
	h := NewHandler(backend)

	g.GET("/health", h.GET)
}
