// Package cli is the taskboard command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jaekwang-park/taskboard/internal/api"
	"github.com/jaekwang-park/taskboard/internal/app"
	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/localstore"
	"github.com/jaekwang-park/taskboard/internal/session"
)

const logFileName = "taskboard.log"

var errNotLoggedIn = errors.New("not logged in; run `taskboard login <username>` first")

type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

// NewRootCommand builds the full command tree. Each call has its own config state.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "taskboard",
		Short: "Manage your tasks from the terminal",
		Long: `Taskboard is a client for the task API: log in, then list, add, edit,
complete, pin, delete and export tasks, or open the interactive board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is <state dir>/config.yaml)")
	root.PersistentFlags().String("api-url", "", "task API base URL")
	root.PersistentFlags().String("state-dir", "", "directory holding the token and preferences")
	_ = opts.v.BindPFlag("api_base_url", root.PersistentFlags().Lookup("api-url"))
	_ = opts.v.BindPFlag("state_dir", root.PersistentFlags().Lookup("state-dir"))

	root.AddCommand(
		newLoginCmd(opts),
		newRegisterCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDoneCmd(opts),
		newPinCmd(opts),
		newRmCmd(opts),
		newExportCmd(opts),
		newStatsCmd(opts),
		newBoardCmd(opts),
		newThemeCmd(opts),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

// runtime is everything a command needs, built from the settings.
type runtime struct {
	settings Settings
	logger   *slog.Logger
	store    *localstore.Store
	sessions *session.Manager
	board    *board.Board
	app      *app.App
	closeLog func()
}

// setup wires the client. With notifier nil, notifications go to stderr and logs
// to stderr; otherwise logs go to a file so they stay out of the board's way.
func (o *rootOptions) setup(cmd *cobra.Command, notifier app.Notifier) (*runtime, error) {
	settings, err := loadSettings(o.v, o.cfgFile)
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(settings.StateDir)
	if err != nil {
		return nil, err
	}

	level, _ := parseLogLevel(settings.LogLevel)
	logOut, closeLog := io.Writer(cmd.ErrOrStderr()), func() {}
	if notifier != nil {
		f, err := os.OpenFile(filepath.Join(settings.StateDir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOut, closeLog = f, func() { f.Close() }
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	if notifier == nil {
		notifier = &printNotifier{w: cmd.ErrOrStderr()}
	}

	client := api.New(settings.APIBaseURL, settings.RequestTimeout)
	sessions := session.NewManager(client, store, session.Config{
		Mode:           settings.SessionMode,
		Logger:         logger,
		RefreshTimeout: settings.RequestTimeout,
	})
	b := board.New(board.Options{Debounce: settings.Debounce})

	return &runtime{
		settings: settings,
		logger:   logger,
		store:    store,
		sessions: sessions,
		board:    b,
		app:      app.New(client, sessions, b, notifier, logger),
		closeLog: closeLog,
	}, nil
}

// requireSession restores the persisted session and loads the task list.
func (r *runtime) requireSession(ctx context.Context) error {
	ok, err := r.app.Restore(ctx)
	if !ok {
		return errNotLoggedIn
	}
	return err
}

func (r *runtime) Close() {
	r.closeLog()
}

// printNotifier shows informational messages. Failures reach the user as the
// command's returned error instead.
type printNotifier struct {
	w io.Writer
}

func (n *printNotifier) Info(msg string) { fmt.Fprintln(n.w, msg) }
func (n *printNotifier) Error(string)    {}
