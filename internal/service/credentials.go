package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jaekwang-park/taskboard/internal/cognito"
	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
)

// CredentialProvider stores and checks username/password pairs.
// Verify returns ErrUnauthorized for any bad credential; Register returns ErrConflict
// when the username is taken.
type CredentialProvider interface {
	Register(ctx context.Context, username, password string) error
	Verify(ctx context.Context, username, password string) (model.User, error)
}

// LocalCredentials keeps bcrypt hashes in the users table.
type LocalCredentials struct {
	users repository.UserRepository
	cost  int
}

func NewLocalCredentials(users repository.UserRepository, cost int) *LocalCredentials {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalCredentials{users: users, cost: cost}
}

func (c *LocalCredentials) Register(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := c.users.Create(ctx, username, string(hash)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: username already exists", ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (c *LocalCredentials) Verify(ctx context.Context, username, password string) (model.User, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user.PasswordHash == "" {
		return model.User{}, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, ErrUnauthorized
	}
	return user, nil
}

// CognitoCredentials delegates password storage to a Cognito user pool and
// mirrors each user into the users table without a hash.
type CognitoCredentials struct {
	client cognito.Client
	users  repository.UserRepository
}

func NewCognitoCredentials(client cognito.Client, users repository.UserRepository) *CognitoCredentials {
	return &CognitoCredentials{client: client, users: users}
}

func (c *CognitoCredentials) Register(ctx context.Context, username, password string) error {
	if _, err := c.client.SignUp(ctx, cognito.SignUpInput{Username: username, Password: password}); err != nil {
		return mapCognitoError(err)
	}
	if _, err := c.users.GetOrCreate(ctx, username); err != nil {
		return fmt.Errorf("failed to get or create user: %w", err)
	}
	return nil
}

func (c *CognitoCredentials) Verify(ctx context.Context, username, password string) (model.User, error) {
	if err := c.client.Login(ctx, cognito.LoginInput{Username: username, Password: password}); err != nil {
		return model.User{}, mapCognitoError(err)
	}
	user, err := c.users.GetOrCreate(ctx, username)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get or create user: %w", err)
	}
	return user, nil
}

func mapCognitoError(err error) error {
	switch {
	case errors.Is(err, cognito.ErrUserAlreadyExists):
		return fmt.Errorf("%w: username already exists", ErrConflict)
	case errors.Is(err, cognito.ErrNotAuthorized),
		errors.Is(err, cognito.ErrUserNotFound),
		errors.Is(err, cognito.ErrUserNotConfirmed):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case errors.Is(err, cognito.ErrInvalidPassword),
		errors.Is(err, cognito.ErrInvalidParameter):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}

var (
	_ CredentialProvider = (*LocalCredentials)(nil)
	_ CredentialProvider = (*CognitoCredentials)(nil)
)
