package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/jaekwang-park/taskboard/internal/token"
)

// ErrUserNotFound is returned by UserResolver when no user matches the token subject.
var ErrUserNotFound = errors.New("user not found")

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tok string) (token.Claims, error)
}

// UserResolver resolves a token subject (username) to the caller's identity.
// Implementations must return ErrUserNotFound (or a wrapped form) when the user does not exist.
type UserResolver interface {
	ResolveIdentity(ctx context.Context, username string) (Identity, error)
}

type AuthConfig struct {
	Tokens       TokenVerifier
	UserResolver UserResolver
	// PublicPaths are served without a bearer token.
	PublicPaths []string
}

type Auth struct {
	cfg    AuthConfig
	public map[string]bool
}

func NewAuth(cfg AuthConfig) (*Auth, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("middleware: Tokens is required")
	}
	if cfg.UserResolver == nil {
		return nil, fmt.Errorf("middleware: UserResolver is required")
	}
	public := make(map[string]bool, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[path.Clean(p)] = true
	}
	return &Auth{cfg: cfg, public: public}, nil
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.public[path.Clean(r.URL.Path)] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization header required")
			return
		}

		scheme, tokenStr, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
			return
		}

		claims, err := a.cfg.Tokens.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				writeError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired")
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "could not validate token")
			}
			return
		}

		id, err := a.cfg.UserResolver.ResolveIdentity(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "user not found")
			} else {
				slog.ErrorContext(r.Context(), "user resolution failed", "error", err)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), id)))
	})
}
