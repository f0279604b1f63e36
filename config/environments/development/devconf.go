// Package development contains development configuration of the app
package development

import (
	"time"

	"taskdeck/config"
)

// SessionSecret signs development cookies only. Production requires
// TASKDECK_SESSION_SECRET.
const SessionSecret = "taskdeck-development-session-key"

type devconf struct{}

func New() config.AppConfiger {
	return devconf{}
}

func (dc devconf) GetPort() string {
	return config.Env("TASKDECK_PORT", "3000")
}

func (dc devconf) GetAPIURL() string {
	return config.Env("TASKDECK_API_URL", "http://localhost:30080")
}

func (dc devconf) GetSessionSecret() string {
	return config.Env("TASKDECK_SESSION_SECRET", SessionSecret)
}

func (dc devconf) GetLogLevel() string {
	return config.Env("TASKDECK_LOG_LEVEL", "debug")
}

func (dc devconf) GetBackendPort() string {
	return config.Env("TASKDECK_BACKEND_PORT", "30080")
}

func (dc devconf) GetDBURL() string {
	return config.Env("TASKDECK_DB_URL", "file:taskdeck.db")
}

func (dc devconf) GetExecTimeout() time.Duration {
	return config.EnvDuration("TASKDECK_EXEC_TIMEOUT", 60*time.Second)
}
