package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/jaekwang-park/taskboard/internal/export"
	taskhttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
	"github.com/jaekwang-park/taskboard/internal/session"
	"github.com/jaekwang-park/taskboard/internal/token"
)

const testPassword = "Str0ng!pass"

// newBackend serves the real API over a throwaway SQLite file.
func newBackend(t *testing.T) string {
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

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(taskhttp.NewHandler(logger, taskhttp.Deps{
		Tasks:          service.NewTaskService(repository.NewTaskRepository(db)),
		Auth:           authSvc,
		AuthMiddleware: auth,
		DB:             db,
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

type harness struct {
	t        *testing.T
	apiURL   string
	stateDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	// Keep the user's own config file out of the way.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	return &harness{t: t, apiURL: newBackend(t), stateDir: t.TempDir()}
}

// run executes one command line and returns its stdout and stderr.
func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--api-url", h.apiURL, "--state-dir", h.stateDir}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// ok runs a command that must succeed and returns its stdout.
func (h *harness) ok(args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run("", args...)
	if err != nil {
		h.t.Fatalf("%v: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func (h *harness) login() {
	h.t.Helper()
	h.ok("register", "alice", "-p", testPassword)
	h.ok("login", "alice", "-p", testPassword)
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()
	want := []string{"login", "register", "logout", "whoami", "list", "add", "edit", "done", "pin", "rm", "export", "stats", "board", "theme"}
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestCLI_RequiresLogin(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{{"list"}, {"add", "x"}, {"stats"}, {"export", "-o", "-"}, {"whoami"}} {
		if _, _, err := h.run("", args...); !errors.Is(err, errNotLoggedIn) {
			t.Errorf("%v: got %v, want errNotLoggedIn", args, err)
		}
	}
}

func TestCLI_RegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("", "register", "alice", "-p", "weak")
	if !errors.Is(err, session.ErrWeakPassword) {
		t.Fatalf("weak password: got %v", err)
	}
	if !strings.HasPrefix(err.Error(), model.WeakPasswordMessage) {
		t.Errorf("weak password message = %q", err.Error())
	}

	_, errOut, err := h.run("", "register", "alice", "-p", testPassword)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.Contains(errOut, "Registration successful. You can now log in.") {
		t.Errorf("register stderr = %q", errOut)
	}

	if _, _, err := h.run("", "register", "alice", "-p", testPassword); err == nil {
		t.Error("duplicate register succeeded")
	}
	if _, _, err := h.run("", "login", "alice", "-p", "Wr0ng!pass"); !errors.Is(err, session.ErrAuthentication) {
		t.Errorf("wrong password: got %v", err)
	}

	// Password read from stdin when not given as a flag.
	out, _, err := h.run(testPassword+"\n", "login", "alice")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out != "Logged in as alice (0 tasks).\n" {
		t.Errorf("login stdout = %q", out)
	}

	if out := h.ok("whoami"); !strings.HasPrefix(out, "alice (session expires ") {
		t.Errorf("whoami = %q", out)
	}

	if out := h.ok("logout"); out != "Logged out.\n" {
		t.Errorf("logout = %q", out)
	}
	if _, _, err := h.run("", "list"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("list after logout: got %v", err)
	}
}

func TestCLI_LoginKeepsSessionWhenLoadFails(t *testing.T) {
	h := newHarness(t)
	h.ok("register", "alice", "-p", testPassword)

	backend, err := url.Parse(h.apiURL)
	if err != nil {
		t.Fatal(err)
	}
	proxy := httputil.NewSingleHostReverseProxy(backend)
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tasks") {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		proxy.ServeHTTP(w, r)
	}))
	t.Cleanup(flaky.Close)
	h.apiURL = flaky.URL

	out, _, err := h.run("", "login", "alice", "-p", testPassword)
	if err != nil {
		t.Fatalf("login with failing task load: %v", err)
	}
	if out != "Logged in as alice. Tasks could not be loaded.\n" {
		t.Errorf("login stdout = %q", out)
	}

	h.apiURL = backend.String()
	if out := h.ok("whoami"); !strings.HasPrefix(out, "alice (session expires ") {
		t.Errorf("whoami after login = %q", out)
	}
}

func TestCLI_TaskLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login()

	if out := h.ok("add", "Write", "report", "--due", "2026-01-05", "--priority", "high", "--tags", "work, urgent,work"); out != "Created task 1: Write report\n" {
		t.Fatalf("add = %q", out)
	}
	if out := h.ok("add", "Buy milk", "-d", "2 liters"); out != "Created task 2: Buy milk\n" {
		t.Fatalf("add = %q", out)
	}
	if _, _, err := h.run("", "add", "Bad", "--priority", "extreme"); err == nil {
		t.Error("invalid priority accepted")
	}
	if _, _, err := h.run("", "add", "   "); err == nil {
		t.Error("blank title accepted")
	}

	if out := h.ok("done", "1"); out != "Task 1 marked completed.\n" {
		t.Errorf("done = %q", out)
	}
	if out := h.ok("pin", "2"); out != "Task 2 pinned.\n" {
		t.Errorf("pin = %q", out)
	}

	out := h.ok("list", "--sort", "title")
	milk, report := strings.Index(out, "Buy milk"), strings.Index(out, "Write report")
	if milk < 0 || report < 0 || milk > report {
		t.Errorf("list should show the pinned task first:\n%s", out)
	}
	if !strings.Contains(out, "work, urgent") {
		t.Errorf("list should show deduplicated tags:\n%s", out)
	}

	out = h.ok("list", "-f", "completed")
	if !strings.Contains(out, "Write report") || strings.Contains(out, "Buy milk") {
		t.Errorf("completed filter:\n%s", out)
	}
	out = h.ok("list", "--tag", "WORK")
	if !strings.Contains(out, "Write report") || strings.Contains(out, "Buy milk") {
		t.Errorf("tag search:\n%s", out)
	}
	if out := h.ok("list", "-s", "#work"); strings.Contains(out, "Write report") {
		t.Errorf("search should not match tags:\n%s", out)
	}
	out = h.ok("list", "-s", "liters")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Write report") {
		t.Errorf("description search:\n%s", out)
	}
	if _, _, err := h.run("", "list", "-f", "someday"); err == nil {
		t.Error("unknown filter accepted")
	}

	if out := h.ok("edit", "2", "--title", "Buy oat milk"); out != "Updated task 2: Buy oat milk\n" {
		t.Errorf("edit = %q", out)
	}
	if out := h.ok("list", "-f", "active"); !strings.Contains(out, "Buy oat milk") || !strings.Contains(out, "*") {
		t.Errorf("edit should keep the pin:\n%s", out)
	}
	if _, _, err := h.run("", "edit", "99", "--title", "x"); err == nil || !strings.Contains(err.Error(), "task 99 not found") {
		t.Errorf("edit missing: got %v", err)
	}

	csv := h.ok("export", "-o", "-")
	want := `"Title","Description","Completed","Due Date","Priority"` + "\n" +
		`"Write report","","Yes","1/5/2026","high"` + "\n" +
		`"Buy oat milk","2 liters","No","","medium"`
	if csv != want {
		t.Errorf("export =\n%s\nwant\n%s", csv, want)
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if out := h.ok("export", "-o", path); out != "Exported 2 tasks to "+path+".\n" {
		t.Errorf("export to file = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != want {
		t.Errorf("exported file = %q, %v", data, err)
	}

	if out := h.ok("stats"); !strings.Contains(out, "Total: 2  Completed: 1  Active: 1") {
		t.Errorf("stats = %q", out)
	}

	if out := h.ok("rm", "1"); out != "Deleted task 1.\n" {
		t.Errorf("rm = %q", out)
	}
	if out := h.ok("list"); strings.Contains(out, "Write report") {
		t.Errorf("deleted task still listed:\n%s", out)
	}
	if _, _, err := h.run("", "rm", "abc"); err == nil {
		t.Error("non-numeric id accepted")
	}
}

func TestCLI_ExportEmpty(t *testing.T) {
	h := newHarness(t)
	h.login()
	if _, _, err := h.run("", "export", "-o", "-"); !errors.Is(err, export.ErrNoTasks) {
		t.Errorf("export with no tasks: got %v", err)
	}
}

func TestCLI_Theme(t *testing.T) {
	h := newHarness(t)
	if out := h.ok("theme"); out != "Theme: dark\n" {
		t.Errorf("toggle from default = %q", out)
	}
	if out := h.ok("theme"); out != "Theme: light\n" {
		t.Errorf("toggle back = %q", out)
	}
	if out := h.ok("theme", "dark"); out != "Theme: dark\n" {
		t.Errorf("theme dark = %q", out)
	}
	if _, _, err := h.run("", "theme", "sepia"); err == nil {
		t.Error("unknown theme accepted")
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	t.Run("defaults", func(t *testing.T) {
		s, err := loadSettings(viper.New(), "")
		if err != nil {
			t.Fatalf("loadSettings: %v", err)
		}
		if s.APIBaseURL != "http://localhost:8000" || s.SessionMode != session.ModeRefresh ||
			s.Debounce != 500*time.Millisecond || s.RequestTimeout != 10*time.Second {
			t.Errorf("defaults = %+v", s)
		}
	})

	t.Run("file then env", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "api_base_url: http://api.example.com/\nsession_mode: expiry\ndebounce: 250ms\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("TASKBOARD_DEBOUNCE", "1s")

		s, err := loadSettings(viper.New(), path)
		if err != nil {
			t.Fatalf("loadSettings: %v", err)
		}
		if s.APIBaseURL != "http://api.example.com" {
			t.Errorf("APIBaseURL = %q", s.APIBaseURL)
		}
		if s.SessionMode != session.ModeExpiry {
			t.Errorf("SessionMode = %q", s.SessionMode)
		}
		if s.Debounce != time.Second {
			t.Errorf("Debounce = %v, want env override", s.Debounce)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := loadSettings(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("TASKBOARD_SESSION_MODE", "forever")
		t.Setenv("TASKBOARD_LOG_LEVEL", "loud")
		_, err := loadSettings(viper.New(), "")
		if err == nil {
			t.Fatal("expected error")
		}
		for _, part := range []string{"session_mode", "log_level"} {
			if !strings.Contains(err.Error(), part) {
				t.Errorf("error %q does not mention %s", err, part)
			}
		}
	})
}
