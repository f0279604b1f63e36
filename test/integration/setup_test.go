//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskdeck/app"
	"taskdeck/config"
	"taskdeck/internal/dbconn"
	"taskdeck/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dbconn.Open(dbconn.WithURL(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sdb, err := db.DB(); err == nil {
			sdb.Close()
		}
	})
	return db
}

// startBackend serves the task backend on db.
func startBackend(t *testing.T, db *gorm.DB) (*httptest.Server, *app.BackendContainer) {
	t.Helper()

	container := app.NewBackendContainer(db, 5*time.Second)
	require.NoError(t, container.Migrate())

	e := echo.New()
	e.Validator = validator.New()
	config.AddBackendRoutes(e, container)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server, container
}

// startUI serves the task page against backendURL.
func startUI(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()

	container, err := app.NewContainer(backendURL, "integration-secret")
	require.NoError(t, err)

	e := echo.New()
	config.AddRoutes(e, container)

	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return server
}

// newBrowser returns a client that keeps cookies and follows the 303s.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}
