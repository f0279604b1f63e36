// Command taskbackend serves the task API backed by SQLite or Postgres.
package main

import (
	"fmt"

	"taskdeck/app"
	"taskdeck/config"
	"taskdeck/config/appconf"
	"taskdeck/internal/dbconn"
	"taskdeck/internal/validator"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

func main() {
	e := echo.New()
	app.ConfigureLogging(e, appconf.LogLevel())

	db, err := dbconn.GetConn(
		dbconn.WithURL(appconf.DBURL()),
	)
	if err != nil {
		log.Fatal("db connection failed: ", err)
	}

	defer dbconn.Close()

	container := app.NewBackendContainer(db, appconf.ExecTimeout())

	if err := container.Migrate(); err != nil {
		log.Fatal("migration failed: ", err)
	}

	e.Validator = validator.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	config.AddBackendRoutes(e, container)

	log.WithField("postgres", dbconn.IsPostgres(appconf.DBURL())).Info("taskdeck backend starting")
	log.Fatal(e.Start(fmt.Sprintf(":%s", appconf.BackendPort())))
}
