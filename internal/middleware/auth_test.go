package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/token"
)

type resolverFunc func(ctx context.Context, username string) (middleware.Identity, error)

func (f resolverFunc) ResolveIdentity(ctx context.Context, username string) (middleware.Identity, error) {
	return f(ctx, username)
}

func knownUsers(ctx context.Context, username string) (middleware.Identity, error) {
	switch username {
	case "alice":
		return middleware.Identity{UserID: 1, Username: "alice"}, nil
	case "broken":
		return middleware.Identity{}, errors.New("db down")
	default:
		return middleware.Identity{}, middleware.ErrUserNotFound
	}
}

func newTestAuth(t *testing.T, tokens *token.Manager) *middleware.Auth {
	t.Helper()
	auth, err := middleware.NewAuth(middleware.AuthConfig{
		Tokens:       tokens,
		UserResolver: resolverFunc(knownUsers),
		PublicPaths:  []string{"/health", "/auth/token", "/auth/register"},
	})
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	return auth
}

func mustIssue(t *testing.T, m *token.Manager, sub string) string {
	t.Helper()
	tok, err := m.Issue(sub)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func TestNewAuth_RequiresDependencies(t *testing.T) {
	if _, err := middleware.NewAuth(middleware.AuthConfig{UserResolver: resolverFunc(knownUsers)}); err == nil {
		t.Error("expected error without Tokens")
	}
	if _, err := middleware.NewAuth(middleware.AuthConfig{Tokens: token.NewManager("s", time.Minute)}); err == nil {
		t.Error("expected error without UserResolver")
	}
}

func TestAuth_Middleware(t *testing.T) {
	tokens := token.NewManager("test-secret", 30*time.Minute)
	expired := tokens.WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
	otherKey := token.NewManager("other-secret", 30*time.Minute)
	auth := newTestAuth(t, tokens)

	var captured middleware.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = middleware.GetIdentity(r)
		w.WriteHeader(http.StatusOK)
	})
	h := auth.Middleware(inner)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
		wantUser   string
	}{
		{name: "public health", path: "/health", wantStatus: http.StatusOK},
		{name: "public login", path: "/auth/token", wantStatus: http.StatusOK},
		{name: "missing header", path: "/tasks/", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "wrong scheme", path: "/tasks/", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "valid token", path: "/tasks/", header: "Bearer " + mustIssue(t, tokens, "alice"), wantStatus: http.StatusOK, wantUser: "alice"},
		{name: "lower-case scheme", path: "/auth/me", header: "bearer " + mustIssue(t, tokens, "alice"), wantStatus: http.StatusOK, wantUser: "alice"},
		{name: "expired token", path: "/tasks/", header: "Bearer " + mustIssue(t, expired, "alice"), wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_EXPIRED"},
		{name: "foreign signature", path: "/tasks/", header: "Bearer " + mustIssue(t, otherKey, "alice"), wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "garbage token", path: "/tasks/", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "deleted user", path: "/tasks/", header: "Bearer " + mustIssue(t, tokens, "ghost"), wantStatus: http.StatusUnauthorized, wantCode: "UNAUTHORIZED"},
		{name: "resolver failure", path: "/tasks/", header: "Bearer " + mustIssue(t, tokens, "broken"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured = middleware.Identity{}
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if captured.Username != tt.wantUser {
				t.Errorf("expected user %q, got %q", tt.wantUser, captured.Username)
			}
			if tt.wantCode == "" {
				return
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, body.Error.Code)
			}
		})
	}
}
