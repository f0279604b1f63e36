// Package tasks serves the task backend API consumed by the UI and taskctl
package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"taskdeck/domain/task"
	"taskdeck/internal/cmdexec"

	"github.com/labstack/echo/v4"
	"github.com/mattn/go-shellwords"
	log "github.com/sirupsen/logrus"
)

// Executor runs a task's command.
type Executor interface {
	Execute(ctx context.Context, command string) (cmdexec.Result, error)
}

type (
	Handler struct {
		repo     task.Repository
		executor Executor
	}
	TaskRequest struct {
		Name    string `json:"name" validate:"required"`
		Owner   string `json:"owner" validate:"required"`
		Command string `json:"command" validate:"required"`
	}
)

func NewHandler(repo task.Repository, executor Executor) *Handler {
	return &Handler{repo: repo, executor: executor}
}

func (h Handler) Create(c echo.Context) error {
	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Owner = strings.TrimSpace(req.Owner)
	req.Command = strings.TrimSpace(req.Command)

	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := shellwords.Parse(req.Command); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid command syntax: " + err.Error(),
		})
	}

	newTask := &task.Task{
		Name:    req.Name,
		Owner:   req.Owner,
		Command: req.Command,
	}
	if err := h.repo.Create(c.Request().Context(), newTask); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to save task: " + err.Error(),
		})
	}

	log.WithFields(log.Fields{"task_id": newTask.ID, "name": newTask.Name}).Info("task created")
	return c.JSON(http.StatusOK, newTask)
}

func (h Handler) Index(c echo.Context) error {
	tasks, err := h.repo.FindAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch tasks: " + err.Error(),
		})
	}
	return c.JSON(http.StatusOK, tasks)
}

// FindByName answers 404 when nothing matches, which clients read as an
// empty result.
func (h Handler) FindByName(c echo.Context) error {
	tasks, err := h.repo.FindByName(c.Request().Context(), pathParam(c, "name"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to search tasks: " + err.Error(),
		})
	}
	if len(tasks) == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "No tasks found",
		})
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h Handler) Delete(c echo.Context) error {
	id := pathParam(c, "id")

	err := h.repo.Delete(c.Request().Context(), id)
	if errors.Is(err, task.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete task: " + err.Error(),
		})
	}

	log.WithField("task_id", id).Info("task deleted")
	return c.NoContent(http.StatusOK)
}

// Execute runs the command, records the execution and answers with the
// captured output as plain text. A timed out run is recorded with what it
// printed before it was stopped.
func (h Handler) Execute(c echo.Context) error {
	ctx := c.Request().Context()
	id := pathParam(c, "id")

	t, err := h.repo.FindByID(ctx, id)
	if errors.Is(err, task.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Task not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch task: " + err.Error(),
		})
	}

	res, runErr := h.executor.Execute(ctx, t.Command)
	if runErr != nil && !errors.Is(runErr, cmdexec.ErrTimeout) {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to execute task: " + runErr.Error(),
		})
	}

	output := res.Output
	if runErr != nil {
		output += runErr.Error() + "\n"
	}

	execution := task.TaskExecution{
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Output:    output,
	}
	if err := h.repo.AppendExecution(ctx, id, execution); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to record execution: " + err.Error(),
		})
	}

	log.WithFields(log.Fields{
		"task_id":   id,
		"exit_code": res.ExitCode,
		"duration":  execution.Duration(),
	}).Info("task executed")

	return c.String(http.StatusOK, output)
}

// pathParam unescapes segments echo routed on the raw path.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Index)
	g.PUT("/", h.Create)
	g.DELETE("/:id", h.Delete)
	g.PUT("/execute/:id", h.Execute)
	g.GET("/find/by-name/:name", h.FindByName)
}
