package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/service"
)

// identityResolver adapts AuthService to middleware.UserResolver.
type identityResolver struct {
	auth *service.AuthService
}

func NewIdentityResolver(auth *service.AuthService) middleware.UserResolver {
	return &identityResolver{auth: auth}
}

func (a *identityResolver) ResolveIdentity(ctx context.Context, username string) (middleware.Identity, error) {
	user, err := a.auth.ResolveUser(ctx, username)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return middleware.Identity{}, middleware.ErrUserNotFound
		}
		return middleware.Identity{}, fmt.Errorf("failed to resolve user: %w", err)
	}
	return middleware.Identity{UserID: user.ID, Username: user.Username}, nil
}
