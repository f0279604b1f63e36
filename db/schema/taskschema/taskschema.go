// Package taskschema holds the gorm schema for tasks and their executions
package taskschema

import (
	"time"

	"taskdeck/domain/task"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

const idPrefix = "tsk_"

// Task is the stored form of task.Task.
type Task struct {
	ID         string `gorm:"primaryKey;size:64"`
	Name       string `gorm:"index;not null"`
	Owner      string `gorm:"not null"`
	Command    string `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Executions []Execution `gorm:"constraint:OnDelete:CASCADE"`
}

// Execution is one recorded run of a task.
type Execution struct {
	ID        uint   `gorm:"primaryKey"`
	TaskID    string `gorm:"index;size:64;not null"`
	StartTime time.Time
	EndTime   time.Time
	Output    string
}

func (Task) TableName() string      { return "tasks" }
func (Execution) TableName() string { return "task_executions" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = NewID()
	}
	return nil
}

func NewID() string {
	return idPrefix + ulid.Make().String()
}

// Models lists everything AutoMigrate needs to create.
func Models() []any {
	return []any{&Task{}, &Execution{}}
}

func FromDomain(t task.Task) Task {
	rec := Task{
		ID:      t.ID,
		Name:    t.Name,
		Owner:   t.Owner,
		Command: t.Command,
	}
	for _, e := range t.TaskExecutions {
		rec.Executions = append(rec.Executions, FromDomainExecution(t.ID, e))
	}
	return rec
}

func FromDomainExecution(taskID string, e task.TaskExecution) Execution {
	return Execution{
		TaskID:    taskID,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Output:    e.Output,
	}
}

// ToDomain converts a record. Executions keep the order they were loaded in.
func (t Task) ToDomain() task.Task {
	out := task.Task{
		ID:             t.ID,
		Name:           t.Name,
		Owner:          t.Owner,
		Command:        t.Command,
		TaskExecutions: make([]task.TaskExecution, 0, len(t.Executions)),
	}
	for _, e := range t.Executions {
		out.TaskExecutions = append(out.TaskExecutions, task.TaskExecution{
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Output:    e.Output,
		})
	}
	return out
}
