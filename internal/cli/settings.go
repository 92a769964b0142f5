package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/session"
)

const envPrefix = "TASKBOARD"

// Settings is the client configuration, read from the config file, the
// TASKBOARD_* environment and flags, in increasing priority.
type Settings struct {
	APIBaseURL     string
	StateDir       string
	SessionMode    session.Mode
	Debounce       time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// DefaultStateDir is where the token and preferences live unless configured.
func DefaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "taskboard")
	}
	return ".taskboard"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("state_dir", DefaultStateDir())
	v.SetDefault("session_mode", string(session.ModeRefresh))
	v.SetDefault("debounce", board.DefaultDebounce.String())
	v.SetDefault("request_timeout", "10s")
	v.SetDefault("log_level", "info")
}

// loadSettings reads cfgFile, or config.yaml from the state dir and the
// working directory when cfgFile is empty. A missing file is not an error.
func loadSettings(v *viper.Viper, cfgFile string) (Settings, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultStateDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	s := Settings{
		APIBaseURL:     strings.TrimRight(v.GetString("api_base_url"), "/"),
		StateDir:       v.GetString("state_dir"),
		SessionMode:    session.Mode(strings.ToLower(v.GetString("session_mode"))),
		Debounce:       v.GetDuration("debounce"),
		RequestTimeout: v.GetDuration("request_timeout"),
		LogLevel:       v.GetString("log_level"),
	}
	return s, s.Validate()
}

func (s Settings) Validate() error {
	var errs []string
	if s.APIBaseURL == "" {
		errs = append(errs, "api_base_url is required")
	}
	if s.StateDir == "" {
		errs = append(errs, "state_dir is required")
	}
	if !s.SessionMode.IsValid() {
		errs = append(errs, fmt.Sprintf("session_mode must be %q or %q, got %q", session.ModeRefresh, session.ModeExpiry, s.SessionMode))
	}
	if s.Debounce <= 0 {
		errs = append(errs, "debounce must be positive")
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, "request_timeout must be positive")
	}
	if _, ok := parseLogLevel(s.LogLevel); !ok {
		errs = append(errs, fmt.Sprintf("log_level must be debug, info, warn or error, got %q", s.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
