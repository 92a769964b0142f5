package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
)

type TaskService struct {
	repo repository.TaskRepository
}

func NewTaskService(repo repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// normalize validates a full task record and fills defaults.
func normalize(input model.TaskInput) (model.TaskInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return input, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return input, fmt.Errorf("%w: invalid priority %q", ErrInvalidInput, input.Priority)
	}
	return input, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, input model.TaskInput) (model.Task, error) {
	input, err := normalize(input)
	if err != nil {
		return model.Task{}, err
	}

	task := model.Task{OwnerID: ownerID}
	task.Apply(input)

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

func (s *TaskService) GetByID(ctx context.Context, ownerID, taskID int64) (model.Task, error) {
	task, err := s.repo.GetByID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Replace overwrites every editable field of the task with input.
func (s *TaskService) Replace(ctx context.Context, ownerID, taskID int64, input model.TaskInput) (model.Task, error) {
	input, err := normalize(input)
	if err != nil {
		return model.Task{}, err
	}

	existing, err := s.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return model.Task{}, err
	}
	existing.Apply(input)

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID int64) error {
	err := s.repo.Delete(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}
