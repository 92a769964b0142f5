package handler_test

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"sync"

	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
)

// memTaskRepo is an in-memory repository.TaskRepository.
type memTaskRepo struct {
	mu     sync.Mutex
	tasks  map[int64]model.Task
	nextID int64
	err    error
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[int64]model.Task{}}
}

func (m *memTaskRepo) Create(_ context.Context, task model.Task) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Task{}, m.err
	}
	m.nextID++
	task.ID = m.nextID
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memTaskRepo) GetByID(_ context.Context, ownerID, taskID int64) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return model.Task{}, sql.ErrNoRows
	}
	return task, nil
}

func (m *memTaskRepo) Update(_ context.Context, task model.Task) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return model.Task{}, sql.ErrNoRows
	}
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memTaskRepo) Delete(_ context.Context, ownerID, taskID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[taskID]
	if !ok || task.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *memTaskRepo) List(_ context.Context, ownerID int64) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Task
	for _, t := range m.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memUserRepo is an in-memory repository.UserRepository.
type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]model.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]model.User{}}
}

func (m *memUserRepo) Create(_ context.Context, username, hash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return model.User{}, repository.ErrDuplicate
	}
	m.nextID++
	u := model.User{ID: m.nextID, Username: username, PasswordHash: hash}
	m.users[username] = u
	return u, nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) GetOrCreate(ctx context.Context, username string) (model.User, error) {
	if u, err := m.GetByUsername(ctx, username); err == nil {
		return u, nil
	}
	return m.Create(ctx, username, "")
}

func withIdentity(r *http.Request, userID int64, username string) *http.Request {
	return r.WithContext(middleware.SetIdentity(r.Context(), middleware.Identity{UserID: userID, Username: username}))
}
