// Package app coordinates the client: it runs user actions against the API and
// applies the confirmed results to the board.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jaekwang-park/taskboard/internal/api"
	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/export"
	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/session"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrSessionEnded = errors.New("session ended")
	ErrTaskNotFound = errors.New("task not found")
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

type TaskAPI interface {
	ListTasks(ctx context.Context, token string) ([]model.Task, error)
	CreateTask(ctx context.Context, token string, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, token string, id int64, in model.TaskInput) (model.Task, error)
	DeleteTask(ctx context.Context, token string, id int64) error
}

type Sessions interface {
	Restore() bool
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
	Logout()
	OnLogout(f func())
	Current() (session.Session, bool)
	Token() (string, error)
	Epoch() uint64
}

type App struct {
	tasks    TaskAPI
	sessions Sessions
	board    *board.Board
	notify   Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func New(tasks TaskAPI, sessions Sessions, b *board.Board, notify Notifier, logger *slog.Logger) *App {
	a := &App{
		tasks:    tasks,
		sessions: sessions,
		board:    b,
		notify:   notify,
		logger:   logger,
		now:      time.Now,
	}
	sessions.OnLogout(b.Clear)
	return a
}

// OnSessionEnd registers f to run whenever the session ends, whatever the cause.
func (a *App) OnSessionEnd(f func()) {
	a.sessions.OnLogout(f)
}

func (a *App) Board() *board.Board {
	return a.board
}

// User returns the name of the logged-in user.
func (a *App) User() (string, bool) {
	s, ok := a.sessions.Current()
	return s.Subject, ok
}

// Restore resumes a persisted session and loads its tasks. It reports whether a
// session was resumed; the error is from loading the tasks.
func (a *App) Restore(ctx context.Context) (bool, error) {
	if !a.sessions.Restore() {
		return false, nil
	}
	return true, a.Refresh(ctx)
}

// Login starts a session and loads its tasks. Like Restore it reports whether a
// session exists afterwards; with true the error is from loading the tasks.
func (a *App) Login(ctx context.Context, username, password string) (bool, error) {
	if err := a.sessions.Login(ctx, username, password); err != nil {
		if errors.Is(err, session.ErrEmptyCredentials) {
			a.notify.Error(session.EmptyCredentialsMessage)
		} else {
			a.logger.Info("login failed", "user", username, "error", err)
			a.notify.Error("Login failed.")
		}
		return false, err
	}
	return true, a.Refresh(ctx)
}

func (a *App) Register(ctx context.Context, username, password string) error {
	if err := a.sessions.Register(ctx, username, password); err != nil {
		var se *api.StatusError
		switch {
		case errors.Is(err, session.ErrEmptyCredentials):
			a.notify.Error(session.EmptyCredentialsMessage)
		case errors.Is(err, session.ErrWeakPassword):
			a.notify.Error(model.WeakPasswordMessage)
		case errors.As(err, &se) && se.Message != "":
			a.notify.Error("Registration failed. " + se.Message)
		default:
			a.notify.Error("Registration failed.")
		}
		return err
	}
	a.notify.Info("Registration successful. You can now log in.")
	return nil
}

func (a *App) Logout() {
	a.sessions.Logout()
}

// Refresh replaces the collection with the server's.
func (a *App) Refresh(ctx context.Context) error {
	var tasks []model.Task
	err := a.call(ctx, "load tasks", func(ctx context.Context, token string) (err error) {
		tasks, err = a.tasks.ListTasks(ctx, token)
		return err
	})
	if err != nil {
		return err
	}
	a.board.SetCollection(tasks)
	return nil
}

// Create validates d locally and, if it is valid, creates the task.
func (a *App) Create(ctx context.Context, d board.Draft) (model.Task, error) {
	in, err := a.validate(d)
	if err != nil {
		return model.Task{}, err
	}

	var created model.Task
	err = a.call(ctx, "create task", func(ctx context.Context, token string) (err error) {
		created, err = a.tasks.CreateTask(ctx, token, in)
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	a.board.Append(created)
	return created, nil
}

// Update replaces every editable field of the task with d.
func (a *App) Update(ctx context.Context, id int64, d board.Draft) (model.Task, error) {
	in, err := a.validate(d)
	if err != nil {
		return model.Task{}, err
	}
	return a.replace(ctx, "update task", id, in)
}

func (a *App) Toggle(ctx context.Context, id int64) (model.Task, error) {
	t, ok := a.board.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	in := t.Input()
	in.Completed = !in.Completed
	return a.replace(ctx, "update task", id, in)
}

func (a *App) TogglePin(ctx context.Context, id int64) (model.Task, error) {
	t, ok := a.board.Task(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	in := t.Input()
	in.Pinned = !in.Pinned
	return a.replace(ctx, "pin task", id, in)
}

func (a *App) replace(ctx context.Context, action string, id int64, in model.TaskInput) (model.Task, error) {
	var updated model.Task
	err := a.call(ctx, action, func(ctx context.Context, token string) (err error) {
		updated, err = a.tasks.UpdateTask(ctx, token, id, in)
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	a.board.Patch(updated)
	return updated, nil
}

func (a *App) Delete(ctx context.Context, id int64) error {
	err := a.call(ctx, "delete task", func(ctx context.Context, token string) error {
		return a.tasks.DeleteTask(ctx, token, id)
	})
	if err != nil {
		return err
	}
	a.board.Remove(id)
	return nil
}

// ExportCSV writes the whole collection, ignoring the current filter and search.
func (a *App) ExportCSV(w io.Writer) error {
	if err := export.Write(w, a.board.Tasks()); err != nil {
		if errors.Is(err, export.ErrNoTasks) {
			a.notify.Error(export.NoTasksMessage)
		} else {
			a.notify.Error("Failed to export tasks.")
		}
		return err
	}
	return nil
}

func (a *App) Stats() board.Stats {
	return a.board.Stats(a.now())
}

func (a *App) View() []model.Task {
	return a.board.View(a.now())
}

func (a *App) validate(d board.Draft) (model.TaskInput, error) {
	in, errs := board.ValidateTask(d)
	if !errs.OK() {
		a.notify.Error(errs.Error())
		return model.TaskInput{}, fmt.Errorf("%w: %w", ErrValidation, errs)
	}
	return in, nil
}

// call runs one request for the current session. A response that arrives
// after the session changed is dropped and reported as ErrSessionEnded.
func (a *App) call(ctx context.Context, action string, f func(ctx context.Context, token string) error) error {
	epoch := a.sessions.Epoch()
	token, err := a.sessions.Token()
	if err != nil {
		return ErrSessionEnded
	}

	err = f(ctx, token)
	if a.sessions.Epoch() != epoch {
		a.logger.Debug("dropping response for an ended session", "action", action, "error", err)
		return ErrSessionEnded
	}
	if err != nil {
		a.logger.Warn("request failed", "action", action, "error", err)
		a.notify.Error("Failed to " + action + ".")
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}
