package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jaekwang-park/taskboard/internal/model"
)

const userColumns = `id, username, password_hash, created_at`

type SQLUserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) Create(ctx context.Context, username, passwordHash string) (model.User, error) {
	query := r.db.Rebind(`
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
		RETURNING ` + userColumns)

	var row userRow
	if err := r.db.QueryRowxContext(ctx, query, username, passwordHash).StructScan(&row); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("username %q: %w", username, ErrDuplicate)
		}
		return model.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return row.toModel(), nil
}

func (r *SQLUserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, username); err != nil {
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel(), nil
}

// GetOrCreate returns the user, creating a row without a password hash if needed.
// Externally authenticated users (cognito) are stored this way.
func (r *SQLUserRepository) GetOrCreate(ctx context.Context, username string) (model.User, error) {
	user, err := r.GetByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	user, err = r.Create(ctx, username, "")
	if errors.Is(err, ErrDuplicate) {
		// Lost a race with a concurrent insert.
		return r.GetByUsername(ctx, username)
	}
	return user, err
}

var _ UserRepository = (*SQLUserRepository)(nil)
