package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jaekwang-park/taskboard/internal/http/handler"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/service"
)

// PublicPaths are reachable without a bearer token.
var PublicPaths = []string{"/health", "/auth/register", "/auth/token"}

type Deps struct {
	Tasks *service.TaskService
	Auth  *service.AuthService
	// AuthMiddleware guards every route outside PublicPaths.
	AuthMiddleware *middleware.Auth
	// LoginLimiter throttles POST /auth/token; nil disables it.
	LoginLimiter *middleware.RateLimiter
	// DB is pinged by /health when set.
	DB handler.Pinger
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handler.WriteError(w, req, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handler.WriteError(w, req, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	r.Use(d.AuthMiddleware.Middleware)

	r.Handle("/health", handler.NewHealthHandler(d.DB)).Methods(http.MethodGet)

	auth := handler.NewAuthHandler(d.Auth)
	auth.Register(r)
	var login http.Handler = http.HandlerFunc(auth.Login)
	if d.LoginLimiter != nil {
		login = d.LoginLimiter.Middleware(login)
	}
	r.Handle("/auth/token", login).Methods(http.MethodPost)

	handler.NewTaskHandler(d.Tasks).Register(r)

	return r
}
