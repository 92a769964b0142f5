package http_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	taskhttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
	"github.com/jaekwang-park/taskboard/internal/token"
)

// newTestDeps wires the real stack over a throwaway SQLite file.
func newTestDeps(t *testing.T, loginPerMinute int) taskhttp.Deps {
	t.Helper()
	db, err := repository.NewDB(context.Background(), "sqlite", filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users := repository.NewUserRepository(db)
	tokens := token.NewManager("test-secret", 30*time.Minute)
	authSvc := service.NewAuthService(service.NewLocalCredentials(users, bcrypt.MinCost), users, tokens)

	auth, err := middleware.NewAuth(middleware.AuthConfig{
		Tokens:       tokens,
		UserResolver: taskhttp.NewIdentityResolver(authSvc),
		PublicPaths:  taskhttp.PublicPaths,
	})
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}

	deps := taskhttp.Deps{
		Tasks:          service.NewTaskService(repository.NewTaskRepository(db)),
		Auth:           authSvc,
		AuthMiddleware: auth,
		DB:             db,
	}
	if loginPerMinute > 0 {
		deps.LoginLimiter = middleware.NewRateLimiter(loginPerMinute)
	}
	return deps
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
