package config

import (
	"taskdeck/app"
	"taskdeck/app/controller/dashboard"
	"taskdeck/app/controller/health"
	"taskdeck/app/controller/static"
	"taskdeck/app/controller/tasks"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AddRoutes registers the UI server routes.
func AddRoutes(e *echo.Echo, container *app.Container) {
	root := e.Group("")

	static.Register(root)
	health.Register(root, container.Client)
	root.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	dashboardHandler := dashboard.NewHandler(container.Registry, container.SessionStore)
	dashboardHandler.RegisterRoutes(root)
}

// AddBackendRoutes registers the task backend routes.
func AddBackendRoutes(e *echo.Echo, container *app.BackendContainer) {
	root := e.Group("")
	health.Register(root, nil)
	root.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(container.Metrics, promhttp.HandlerOpts{})))

	tasksHandler := tasks.NewHandler(container.TaskRepository, container.Executor)
	tasksHandler.RegisterRoutes(e.Group("/tasks"))
}
