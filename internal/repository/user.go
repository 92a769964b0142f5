package repository

import (
	"context"

	"github.com/jaekwang-park/taskboard/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetOrCreate(ctx context.Context, username string) (model.User, error)
}
