package gorm

import (
	"context"
	"errors"
	"strings"

	"taskdeck/db/schema/taskschema"
	"taskdeck/domain/task"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) task.Repository {
	return &TaskRepository{db: db}
}

// Create stores t and writes the generated ID back into it.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	rec := taskschema.FromDomain(*t)
	rec.ID = taskschema.NewID()
	rec.Executions = nil

	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return err
	}

	t.ID = rec.ID
	if t.TaskExecutions == nil {
		t.TaskExecutions = []task.TaskExecution{}
	}
	return nil
}

// FindAll returns tasks in creation order.
func (r *TaskRepository) FindAll(ctx context.Context) ([]task.Task, error) {
	var recs []taskschema.Task
	err := r.withExecutions(ctx).Order("created_at asc, id asc").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toDomain(recs), nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	var rec taskschema.Task
	err := r.withExecutions(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, task.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t := rec.ToDomain()
	return &t, nil
}

// FindByName matches name as a case-insensitive substring. LIKE wildcards in
// name are matched literally.
func (r *TaskRepository) FindByName(ctx context.Context, name string) ([]task.Task, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"

	var recs []taskschema.Task
	err := r.withExecutions(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
		Order("created_at asc, id asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toDomain(recs), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&taskschema.Task{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return task.ErrNotFound
		}
		return tx.Delete(&taskschema.Execution{}, "task_id = ?", id).Error
	})
}

func (r *TaskRepository) AppendExecution(ctx context.Context, id string, execution task.TaskExecution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&taskschema.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return task.ErrNotFound
		}
		rec := taskschema.FromDomainExecution(id, execution)
		return tx.Create(&rec).Error
	})
}

func (r *TaskRepository) withExecutions(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Executions", func(db *gorm.DB) *gorm.DB {
		return db.Order("start_time asc, id asc")
	})
}

func toDomain(recs []taskschema.Task) []task.Task {
	tasks := make([]task.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.ToDomain())
	}
	return tasks
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
