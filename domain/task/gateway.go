package task

import "context"

// Gateway is the remote task API as seen by its consumers.
type Gateway interface {
	List(ctx context.Context) ([]Task, error)
	Create(ctx context.Context, nt NewTask) (*Task, error)
	Delete(ctx context.Context, id string) error
	Execute(ctx context.Context, id string) (string, error)
	FindByName(ctx context.Context, name string) ([]Task, error)
}
