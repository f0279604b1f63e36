package view

import (
	"maps"
	"slices"

	"taskdeck/domain/task"
)

const (
	MsgFetchFailed   = "Failed to fetch tasks. Make sure the backend is running."
	MsgCreated       = "Task created successfully!"
	MsgCreateFailed  = "Failed to create task."
	MsgDeleted       = "Task deleted successfully!"
	MsgDeleteFailed  = "Failed to delete task."
	MsgExecuteFailed = "Failed to execute task."
)

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient message shown once.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// ExecutionOutput backs the output modal opened after a successful run.
type ExecutionOutput struct {
	TaskID   string
	TaskName string
	Text     string
}

type CreateForm struct {
	Name    string
	Owner   string
	Command string
	// Errors maps a field name (name, owner, command) to its message.
	Errors map[string]string
}

// State is everything needed to render the task page.
type State struct {
	Tasks            []task.Task
	Loading          bool
	Error            string
	CreateDialogOpen bool
	Submitting       bool

	// Query is the filter applied by the latest refresh. Empty means all tasks.
	Query string
	// Loaded is set once the initial refresh has settled.
	Loaded          bool
	Form            CreateForm
	PendingDeleteID string
	Output          *ExecutionOutput
	Notifications   []Notification
}

func (s State) clone() State {
	out := s
	if s.Tasks != nil {
		out.Tasks = make([]task.Task, len(s.Tasks))
		for i, t := range s.Tasks {
			t.TaskExecutions = slices.Clone(t.TaskExecutions)
			out.Tasks[i] = t
		}
	}
	out.Form.Errors = maps.Clone(s.Form.Errors)
	if s.Output != nil {
		o := *s.Output
		out.Output = &o
	}
	out.Notifications = slices.Clone(s.Notifications)
	return out
}

// HasError reports whether the error panel replaces the table.
func (s State) HasError() bool {
	return s.Error != ""
}

func (s State) ConfirmingDelete(id string) bool {
	return s.PendingDeleteID != "" && s.PendingDeleteID == id
}
