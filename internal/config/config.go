package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	ProviderLocal   = "local"
	ProviderCognito = "cognito"
)

const devJWTSecret = "local-dev-secret"

type Config struct {
	ServerPort         string
	AppEnv             string
	LogLevel           string
	AuthProvider       string
	LoginRatePerMinute int
	DB                 DBConfig
	Token              TokenConfig
	Cognito            CognitoConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.DB.Driver != DriverPostgres && c.DB.Driver != DriverSQLite {
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DB.Driver)
	}
	if c.DB.Driver == DriverSQLite && c.DB.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER is sqlite")
	}
	if c.Token.TTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.AppEnv != "local" && (c.Token.Secret == "" || c.Token.Secret == devJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in %s environment", c.AppEnv)
	}
	if c.LoginRatePerMinute < 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must not be negative")
	}
	switch c.AuthProvider {
	case ProviderLocal:
	case ProviderCognito:
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_PROVIDER is cognito")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_PROVIDER is cognito")
		}
	default:
		return fmt.Errorf("invalid AUTH_PROVIDER %q: must be local or cognito", c.AuthProvider)
	}
	return nil
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// DSN returns the data source name for the configured driver.
func (d DBConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

func Load() Config {
	return Config{
		ServerPort:         envOrDefault("SERVER_PORT", "8000"),
		AppEnv:             envOrDefault("APP_ENV", "local"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		AuthProvider:       strings.ToLower(envOrDefault("AUTH_PROVIDER", ProviderLocal)),
		LoginRatePerMinute: intOrDefault("LOGIN_RATE_PER_MINUTE", 5),
		DB: DBConfig{
			Driver:     strings.ToLower(envOrDefault("DB_DRIVER", DriverSQLite)),
			Host:       envOrDefault("DB_HOST", "localhost"),
			Port:       envOrDefault("DB_PORT", "5432"),
			User:       envOrDefault("DB_USER", "taskboard"),
			Password:   envOrDefault("DB_PASSWORD", "taskboard"),
			Name:       envOrDefault("DB_NAME", "taskboard"),
			SSLMode:    envOrDefault("DB_SSLMODE", "disable"),
			SQLitePath: envOrDefault("SQLITE_PATH", "taskboard.db"),
		},
		Token: TokenConfig{
			Secret: envOrDefault("JWT_SECRET", devJWTSecret),
			TTL:    durationOrDefault("TOKEN_TTL", 30*time.Minute),
		},
		Cognito: CognitoConfig{
			Region:          envOrDefault("COGNITO_REGION", "ap-northeast-1"),
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func intOrDefault(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

// durationOrDefault returns 0 for unparseable values so Validate rejects them.
func durationOrDefault(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
