// Package tui is the interactive task board.
package tui

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaekwang-park/taskboard/internal/board"
	"github.com/jaekwang-park/taskboard/internal/model"
)

// FadeDuration is how long a deleted row stays visible while it fades out.
const FadeDuration = 300 * time.Millisecond

// Controller is what the board needs from the application.
type Controller interface {
	Login(ctx context.Context, username, password string) (bool, error)
	Register(ctx context.Context, username, password string) error
	Logout()
	User() (string, bool)
	Refresh(ctx context.Context) error
	Create(ctx context.Context, d board.Draft) (model.Task, error)
	Update(ctx context.Context, id int64, d board.Draft) (model.Task, error)
	Toggle(ctx context.Context, id int64) (model.Task, error)
	TogglePin(ctx context.Context, id int64) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	ExportCSV(w io.Writer) error
	Stats() board.Stats
	View() []model.Task
	Board() *board.Board
}

// ThemeStore persists the dark-mode preference.
type ThemeStore interface {
	DarkMode() (bool, error)
	SetDarkMode(dark bool) error
}

type Options struct {
	RequestTimeout time.Duration
	ExportPath     string
	Now            func() time.Time
}

type mode int

const (
	modeLogin mode = iota
	modeList
	modeSearch
	modeForm
)

type (
	statusMsg struct {
		text  string
		isErr bool
	}
	boardChangedMsg struct{}
	sessionEndedMsg struct{}
	loginDoneMsg    struct {
		ok  bool
		err error
	}
	registerDoneMsg struct{ err error }
	actionDoneMsg   struct{ err error }
	fadeDoneMsg     struct{ id int64 }
	exportDoneMsg   struct {
		path string
		err  error
	}
)

type Model struct {
	ctrl   Controller
	themes ThemeStore
	opts   Options

	mode     mode
	register bool
	username textinput.Model
	password textinput.Model
	search   textinput.Model
	form     taskForm

	cursor    int
	showStats bool
	dark      bool
	theme     Theme
	fading    map[int64]bool
	status    statusMsg
}

func New(ctrl Controller, themes ThemeStore, opts Options) Model {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ExportPath == "" {
		opts.ExportPath = "tasks.csv"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	user := textinput.New()
	user.Placeholder = "Username"
	user.CharLimit = 64
	user.Focus()

	pass := textinput.New()
	pass.Placeholder = "Password"
	pass.CharLimit = 128
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "Search title or description"
	search.CharLimit = 128

	dark, _ := themes.DarkMode()

	m := Model{
		ctrl:     ctrl,
		themes:   themes,
		opts:     opts,
		username: user,
		password: pass,
		search:   search,
		dark:     dark,
		theme:    newTheme(dark),
		fading:   make(map[int64]bool),
	}
	if _, ok := ctrl.User(); ok {
		m.mode = modeList
		m.username.Blur()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 20 {
			m.search.Width = msg.Width - 10
		}
		return m, nil
	case statusMsg:
		m.status = msg
		return m, nil
	case boardChangedMsg, actionDoneMsg:
		m.clampCursor()
		return m, nil
	case sessionEndedMsg:
		if m.mode != modeLogin {
			m.toLogin()
			m.status = statusMsg{text: "Session ended. Please log in again."}
		}
		return m, nil
	case loginDoneMsg:
		// A failed first load still leaves the user logged in.
		if msg.ok {
			m.mode = modeList
			m.password.SetValue("")
			m.password.Blur()
			m.username.Blur()
			if msg.err == nil {
				m.status = statusMsg{}
			}
		}
		return m, nil
	case registerDoneMsg:
		if msg.err == nil {
			m.register = false
			m.password.SetValue("")
		}
		return m, nil
	case fadeDoneMsg:
		delete(m.fading, msg.id)
		m.ctrl.Board().Release(msg.id)
		m.clampCursor()
		return m, nil
	case exportDoneMsg:
		if msg.err == nil {
			m.status = statusMsg{text: "Exported to " + msg.path}
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeLogin:
			return m.updateLogin(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeForm:
			return m.updateForm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *Model) toLogin() {
	m.mode = modeLogin
	m.showStats = false
	m.cursor = 0
	m.search.SetValue("")
	m.search.Blur()
	m.password.SetValue("")
	m.password.Blur()
	m.username.Focus()
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if m.username.Focused() {
			m.username.Blur()
			return m, m.password.Focus()
		}
		m.password.Blur()
		return m, m.username.Focus()
	case "ctrl+n":
		m.register = !m.register
		m.status = statusMsg{}
		return m, nil
	case "enter":
		user, pass := m.username.Value(), m.password.Value()
		if m.register {
			return m, m.run(func(ctx context.Context) tea.Msg {
				return registerDoneMsg{err: m.ctrl.Register(ctx, user, pass)}
			})
		}
		return m, m.run(func(ctx context.Context) tea.Msg {
			ok, err := m.ctrl.Login(ctx, user, pass)
			return loginDoneMsg{ok: ok, err: err}
		})
	case "esc":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.ctrl.Board()
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.search.Blur()
		b.ApplyQuery(m.search.Value())
		return m, nil
	case "esc":
		m.mode = modeList
		m.search.Blur()
		m.search.SetValue("")
		b.ApplyQuery("")
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		b.SetQuery(v)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.status = statusMsg{}
		return m, nil
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "enter":
		d := m.form.draft()
		if _, errs := board.ValidateTask(d); !errs.OK() {
			m.status = statusMsg{text: errs.Error(), isErr: true}
			return m, nil
		}
		id := m.form.editID
		m.mode = modeList
		m.status = statusMsg{}
		return m, m.run(func(ctx context.Context) tea.Msg {
			var err error
			if id == 0 {
				_, err = m.ctrl.Create(ctx, d)
			} else {
				_, err = m.ctrl.Update(ctx, id, d)
			}
			return actionDoneMsg{err: err}
		})
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.ctrl.Board()
	view := m.ctrl.View()
	selected, hasSelection := m.selected(view)

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(view)-1 {
			m.cursor++
		}
	case "/":
		m.mode = modeSearch
		return m, m.search.Focus()
	case "esc":
		m.search.SetValue("")
		b.ApplyQuery("")
	case "f":
		b.SetFilter(nextFilter(b.State().Filter))
		m.cursor = 0
	case "#":
		b.SetTag(nextTag(board.AllTags(b.Tasks()), b.State().Tag))
		m.cursor = 0
	case "s":
		st := b.State()
		b.SetSort(nextSortKey(st.SortKey), st.SortDir)
	case "r":
		st := b.State()
		dir := board.Desc
		if st.SortDir == board.Desc {
			dir = board.Asc
		}
		b.SetSort(st.SortKey, dir)
	case "t":
		m.showStats = !m.showStats
	case "D":
		m.dark = !m.dark
		m.theme = newTheme(m.dark)
		if err := m.themes.SetDarkMode(m.dark); err != nil {
			m.status = statusMsg{text: "Failed to save theme.", isErr: true}
		}
	case "a":
		m.form = newTaskForm(0, board.Draft{})
		m.mode = modeForm
	case "e":
		if hasSelection {
			m.form = newTaskForm(selected.ID, board.DraftOf(selected))
			m.mode = modeForm
		}
	case " ":
		if hasSelection {
			id := selected.ID
			return m, m.run(func(ctx context.Context) tea.Msg {
				_, err := m.ctrl.Toggle(ctx, id)
				return actionDoneMsg{err: err}
			})
		}
	case "p":
		if hasSelection {
			id := selected.ID
			return m, m.run(func(ctx context.Context) tea.Msg {
				_, err := m.ctrl.TogglePin(ctx, id)
				return actionDoneMsg{err: err}
			})
		}
	case "d":
		if hasSelection && !m.fading[selected.ID] {
			id := selected.ID
			m.fading[id] = true
			// The request goes out now. The row stays until the fade ends.
			b.Hold(id)
			return m, tea.Batch(
				m.run(func(ctx context.Context) tea.Msg {
					return actionDoneMsg{err: m.ctrl.Delete(ctx, id)}
				}),
				tea.Tick(FadeDuration, func(time.Time) tea.Msg { return fadeDoneMsg{id: id} }),
			)
		}
	case "x":
		return m, m.exportCmd()
	case "R":
		return m, m.run(func(ctx context.Context) tea.Msg {
			return actionDoneMsg{err: m.ctrl.Refresh(ctx)}
		})
	case "L":
		ctrl := m.ctrl
		return m, func() tea.Msg {
			ctrl.Logout()
			return sessionEndedMsg{}
		}
	}
	return m, nil
}

func (m Model) selected(view []model.Task) (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(view) {
		return model.Task{}, false
	}
	return view[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.View())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// run executes f off the event loop with the request timeout applied.
func (m Model) run(f func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return f(ctx)
	}
}

func (m Model) exportCmd() tea.Cmd {
	ctrl, path := m.ctrl, m.opts.ExportPath
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := ctrl.ExportCSV(&buf); err != nil {
			return exportDoneMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return statusMsg{text: "Failed to export tasks.", isErr: true}
		}
		return exportDoneMsg{path: path}
	}
}

// nextTag cycles through tags, then back to no tag.
func nextTag(tags []string, current string) string {
	for i, tag := range tags {
		if strings.EqualFold(tag, current) {
			if i+1 < len(tags) {
				return tags[i+1]
			}
			return ""
		}
	}
	if current == "" && len(tags) > 0 {
		return tags[0]
	}
	return ""
}

func nextFilter(f board.Filter) board.Filter {
	for i, cand := range board.Filters {
		if cand == f {
			return board.Filters[(i+1)%len(board.Filters)]
		}
	}
	return board.FilterAll
}

func nextSortKey(k board.SortKey) board.SortKey {
	for i, cand := range board.SortKeys {
		if cand == k {
			return board.SortKeys[(i+1)%len(board.SortKeys)]
		}
	}
	return board.SortDueDate
}
