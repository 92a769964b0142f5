package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaekwang-park/taskboard/internal/cognito"
	"github.com/jaekwang-park/taskboard/internal/config"
	taskhttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
	"github.com/jaekwang-park/taskboard/internal/token"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"db_driver", cfg.DB.Driver,
		"auth_provider", cfg.AuthProvider,
		"token_ttl", cfg.Token.TTL.String(),
		"log_level", cfg.LogLevel,
	)

	db, err := repository.NewDB(ctx, cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database ready", "driver", cfg.DB.Driver)

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	var creds service.CredentialProvider
	switch cfg.AuthProvider {
	case config.ProviderCognito:
		client, err := cognito.NewAWSClient(ctx, cfg.Cognito.Region, cfg.Cognito.AppClientID, cfg.Cognito.AppClientSecret)
		if err != nil {
			return err
		}
		creds = service.NewCognitoCredentials(client, userRepo)
		logger.Info("cognito credential provider initialized", "region", cfg.Cognito.Region)
	default:
		creds = service.NewLocalCredentials(userRepo, 0)
	}

	tokens := token.NewManager(cfg.Token.Secret, cfg.Token.TTL)
	authSvc := service.NewAuthService(creds, userRepo, tokens)

	auth, err := middleware.NewAuth(middleware.AuthConfig{
		Tokens:       tokens,
		UserResolver: taskhttp.NewIdentityResolver(authSvc),
		PublicPaths:  taskhttp.PublicPaths,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	deps := taskhttp.Deps{
		Tasks:          service.NewTaskService(taskRepo),
		Auth:           authSvc,
		AuthMiddleware: auth,
		DB:             db,
	}
	if cfg.LoginRatePerMinute > 0 {
		deps.LoginLimiter = middleware.NewRateLimiter(cfg.LoginRatePerMinute)
	}

	l, err := net.Listen("tcp", net.JoinHostPort("", cfg.ServerPort))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return taskhttp.NewServer(logger, deps).Run(ctx, l)
}
