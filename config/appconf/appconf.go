// Package appconf contains app related configurations
package appconf

import (
	"os"
	"time"

	"taskdeck/config"
	devconf "taskdeck/config/environments/development"
	prodconf "taskdeck/config/environments/production"
)

var appconf config.AppConfiger

func Port() string {
	return appconf.GetPort()
}

func APIURL() string {
	return appconf.GetAPIURL()
}

func SessionSecret() string {
	return appconf.GetSessionSecret()
}

func LogLevel() string {
	return appconf.GetLogLevel()
}

func BackendPort() string {
	return appconf.GetBackendPort()
}

func DBURL() string {
	return appconf.GetDBURL()
}

func ExecTimeout() time.Duration {
	return appconf.GetExecTimeout()
}

func load(env string) config.AppConfiger {
	switch env {
	case "production":
		return prodconf.New()
	case "development":
		return devconf.New()
	default:
		return devconf.New()
	}
}

func init() {
	appconf = load(os.Getenv("APP_ENV"))
}
