package app

import (
	"errors"
	"fmt"
	"time"

	"taskdeck/app/controller/dashboard"
	"taskdeck/app/view"
	"taskdeck/db/schema/taskschema"
	"taskdeck/domain/task"
	"taskdeck/internal/cmdexec"
	gormRepo "taskdeck/internal/repository/gorm"
	"taskdeck/internal/sysmetrics"
	"taskdeck/internal/taskapi"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// SessionMaxAge is how long a browser keeps its session cookie.
const SessionMaxAge = int(view.DefaultSessionTTL / time.Second)

// Container wires the UI server.
type Container struct {
	Client       *taskapi.Client
	Registry     *view.Registry
	SessionStore sessions.Store
}

func NewContainer(apiURL, sessionSecret string) (*Container, error) {
	if sessionSecret == "" {
		return nil, errors.New("session secret is required")
	}

	client, err := taskapi.NewClient(taskapi.Config{
		BaseURL: apiURL,
		Name:    "taskdeck-ui",
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	return &Container{
		Client:       client,
		Registry:     view.NewRegistry(client, view.DefaultMaxSessions, view.DefaultSessionTTL),
		SessionStore: dashboard.NewCookieStore([]byte(sessionSecret), SessionMaxAge),
	}, nil
}

// BackendContainer wires the task backend.
type BackendContainer struct {
	DB             *gorm.DB
	TaskRepository task.Repository
	Executor       *cmdexec.Executor
	// Metrics is private to the backend so several backends can live in one
	// process, as they do in tests.
	Metrics *prometheus.Registry
}

func NewBackendContainer(db *gorm.DB, execTimeout time.Duration) *BackendContainer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		sysmetrics.New("/"),
	)

	return &BackendContainer{
		DB:             db,
		TaskRepository: gormRepo.NewTaskRepository(db),
		Executor:       cmdexec.New(cmdexec.WithTimeout(execTimeout)),
		Metrics:        reg,
	}
}

func (c *BackendContainer) Migrate() error {
	return c.DB.AutoMigrate(taskschema.Models()...)
}
