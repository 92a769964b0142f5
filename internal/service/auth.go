package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/token"
)

// AuthService handles registration, login and token renewal.
type AuthService struct {
	creds  CredentialProvider
	users  repository.UserRepository
	tokens *token.Manager
}

// NewAuthService creates a new AuthService.
func NewAuthService(creds CredentialProvider, users repository.UserRepository, tokens *token.Manager) *AuthService {
	return &AuthService{
		creds:  creds,
		users:  users,
		tokens: tokens,
	}
}

type CredentialsInput struct {
	Username string
	Password string
}

type TokenOutput struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (s *AuthService) Register(ctx context.Context, input CredentialsInput) error {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if !model.IsStrongPassword(input.Password) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, model.WeakPasswordMessage)
	}

	return s.creds.Register(ctx, username, input.Password)
}

func (s *AuthService) Login(ctx context.Context, input CredentialsInput) (TokenOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return TokenOutput{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	user, err := s.creds.Verify(ctx, username, input.Password)
	if err != nil {
		return TokenOutput{}, err
	}
	return s.issue(user.Username)
}

// Refresh issues a fresh token for a caller whose current token already passed verification.
func (s *AuthService) Refresh(ctx context.Context, username string) (TokenOutput, error) {
	if _, err := s.ResolveUser(ctx, username); err != nil {
		return TokenOutput{}, err
	}
	return s.issue(username)
}

// ResolveUser looks up the user a token subject names.
func (s *AuthService) ResolveUser(ctx context.Context, username string) (model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return model.User{}, fmt.Errorf("failed to resolve user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(username string) (TokenOutput, error) {
	tok, err := s.tokens.Issue(username)
	if err != nil {
		return TokenOutput{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return TokenOutput{
		AccessToken: tok,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	}, nil
}
