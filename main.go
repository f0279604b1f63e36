package main

import (
	"fmt"

	"taskdeck/app"
	"taskdeck/config"
	"taskdeck/config/appconf"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

func main() {
	e := echo.New()
	app.ConfigureLogging(e, appconf.LogLevel())

	container, err := app.NewContainer(appconf.APIURL(), appconf.SessionSecret())
	if err != nil {
		log.Fatal("startup failed: ", err)
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	config.AddRoutes(e, container)

	log.WithField("backend", container.Client.BaseURL()).Info("taskdeck ui starting")
	log.Fatal(e.Start(fmt.Sprintf(":%s", appconf.Port())))
}
