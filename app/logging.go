package app

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies level to logrus and to echo's own logger. An
// unknown level falls back to info.
func ConfigureLogging(e *echo.Echo, level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if e != nil {
		e.Logger.SetLevel(echoLevel(lvl))
	}
	return lvl
}

func echoLevel(lvl logrus.Level) log.Lvl {
	switch {
	case lvl >= logrus.DebugLevel:
		return log.DEBUG
	case lvl == logrus.InfoLevel:
		return log.INFO
	case lvl == logrus.WarnLevel:
		return log.WARN
	default:
		return log.ERROR
	}
}
