package task

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("task not found")

// Repository stores tasks for the reference backend.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindAll(ctx context.Context) ([]Task, error)
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByName(ctx context.Context, name string) ([]Task, error)
	Delete(ctx context.Context, id string) error
	AppendExecution(ctx context.Context, id string, execution TaskExecution) error
}
