package repository

import (
	"context"

	"github.com/jaekwang-park/taskboard/internal/model"
)

type TaskRepository interface {
	Create(ctx context.Context, task model.Task) (model.Task, error)
	GetByID(ctx context.Context, ownerID, taskID int64) (model.Task, error)
	Update(ctx context.Context, task model.Task) (model.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) error
	List(ctx context.Context, ownerID int64) ([]model.Task, error)
}
