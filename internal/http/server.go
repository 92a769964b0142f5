package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jaekwang-park/taskboard/internal/middleware"
)

const shutdownGrace = 10 * time.Second

// Server serves the task API until its context ends, then drains in-flight
// requests for up to shutdownGrace.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(logger *slog.Logger, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Handler:           NewHandler(logger, deps),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler returns the router wrapped in logging -> recovery. Auth runs inside the router.
func NewHandler(logger *slog.Logger, deps Deps) http.Handler {
	return middleware.Logging(logger)(middleware.Recovery(logger)(NewRouter(deps)))
}

// Run serves on l and blocks until ctx is done or serving fails.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	s.logger.Info("starting server", "addr", l.Addr().String())

	errc := make(chan error, 1)
	go func() { errc <- s.httpServer.Serve(l) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}
