package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaekwang-park/taskboard/internal/model"
)

const taskColumns = `id, owner_id, title, description, due_date, completed, priority, tags, pinned, created_at`

// SQLTaskRepository stores tasks in postgres or sqlite; queries are written
// with ? placeholders and rebound for the connected driver.
type SQLTaskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db}
}

func (r *SQLTaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := r.db.Rebind(`
		INSERT INTO tasks (owner_id, title, description, due_date, completed, priority, tags, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + taskColumns)

	var row taskRow
	err := r.db.QueryRowxContext(ctx, query,
		task.OwnerID, task.Title, task.Description, task.DueDate,
		task.Completed, string(task.Priority), task.Tags, task.Pinned,
	).StructScan(&row)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLTaskRepository) GetByID(ctx context.Context, ownerID, taskID int64) (model.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`)

	var row taskRow
	if err := r.db.GetContext(ctx, &row, query, taskID, ownerID); err != nil {
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLTaskRepository) Update(ctx context.Context, task model.Task) (model.Task, error) {
	query := r.db.Rebind(`
		UPDATE tasks
		SET title = ?, description = ?, due_date = ?, completed = ?, priority = ?, tags = ?, pinned = ?
		WHERE id = ? AND owner_id = ?
		RETURNING ` + taskColumns)

	var row taskRow
	err := r.db.QueryRowxContext(ctx, query,
		task.Title, task.Description, task.DueDate, task.Completed,
		string(task.Priority), task.Tags, task.Pinned,
		task.ID, task.OwnerID,
	).StructScan(&row)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLTaskRepository) Delete(ctx context.Context, ownerID, taskID int64) error {
	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ? AND owner_id = ?`)

	result, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns the owner's tasks in creation order; the client does its own sorting.
func (r *SQLTaskRepository) List(ctx context.Context, ownerID int64) ([]model.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = ? ORDER BY id ASC`)

	var rows []taskRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

var _ TaskRepository = (*SQLTaskRepository)(nil)
