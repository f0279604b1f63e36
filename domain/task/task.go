package task

import (
	"time"
)

// Task is a named, owned shell command tracked by the backend.
type Task struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Owner          string          `json:"owner"`
	Command        string          `json:"command"`
	TaskExecutions []TaskExecution `json:"taskExecutions"`
}

// TaskExecution is one historical run of a task's command.
type TaskExecution struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Output    string    `json:"output"`
}

// NewTask is the payload used to create a task. The backend assigns the ID.
type NewTask struct {
	Name    string `json:"name" validate:"required"`
	Owner   string `json:"owner" validate:"required"`
	Command string `json:"command" validate:"required"`
}

// LastExecution returns the most recent execution, if any.
func (t Task) LastExecution() (TaskExecution, bool) {
	if len(t.TaskExecutions) == 0 {
		return TaskExecution{}, false
	}
	return t.TaskExecutions[len(t.TaskExecutions)-1], true
}

// Duration is how long the execution ran.
func (e TaskExecution) Duration() time.Duration {
	if e.EndTime.Before(e.StartTime) {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}
