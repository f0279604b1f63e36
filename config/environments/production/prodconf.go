// Package production contains production configuration of the app
package production

import (
	"time"

	"taskdeck/config"
)

type prodconf struct{}

func New() config.AppConfiger {
	return prodconf{}
}

func (pc prodconf) GetPort() string {
	return config.Env("TASKDECK_PORT", "3000")
}

func (pc prodconf) GetAPIURL() string {
	return config.Env("TASKDECK_API_URL", "http://taskdeck-backend:8080")
}

// GetSessionSecret has no default: an empty secret stops the UI server from
// starting.
func (pc prodconf) GetSessionSecret() string {
	return config.Env("TASKDECK_SESSION_SECRET", "")
}

func (pc prodconf) GetLogLevel() string {
	return config.Env("TASKDECK_LOG_LEVEL", "info")
}

func (pc prodconf) GetBackendPort() string {
	return config.Env("TASKDECK_BACKEND_PORT", "8080")
}

func (pc prodconf) GetDBURL() string {
	return config.Env("TASKDECK_DB_URL", "/var/lib/taskdeck/taskdeck.db")
}

func (pc prodconf) GetExecTimeout() time.Duration {
	return config.EnvDuration("TASKDECK_EXEC_TIMEOUT", 60*time.Second)
}
