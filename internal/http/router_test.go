package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	taskhttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/model"
)

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *apiClient) do(method, path string, body any) *http.Response {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestRouter_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(taskhttp.NewHandler(discardLogger(), newTestDeps(t, 0)))
	defer srv.Close()
	c := &apiClient{t: t, base: srv.URL}
	creds := map[string]string{"username": "alice", "password": "Str0ng!pw"}

	if resp := c.do(http.MethodGet, "/tasks/", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	if resp := c.do(http.MethodPost, "/auth/register", creds); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}

	resp := c.do(http.MethodPost, "/auth/token", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	c.token = decode[map[string]any](t, resp)["access_token"].(string)

	me := decode[map[string]string](t, c.do(http.MethodGet, "/auth/me", nil))
	if me["username"] != "alice" {
		t.Errorf("expected me=alice, got %v", me)
	}

	resp = c.do(http.MethodPost, "/tasks/", map[string]any{"title": "Buy milk", "priority": "high", "due_date": "2025-01-02"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decode[model.Task](t, resp)

	resp = c.do(http.MethodPut, "/tasks/"+itoa(created.ID), map[string]any{"title": "Buy oat milk", "completed": true, "priority": "high"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decode[model.Task](t, resp)
	if !updated.Completed || updated.DueDate != nil {
		t.Errorf("expected full replace, got %+v", updated)
	}

	tasks := decode[[]model.Task](t, c.do(http.MethodGet, "/tasks/", nil))
	if len(tasks) != 1 || tasks[0].Title != "Buy oat milk" {
		t.Errorf("unexpected list: %+v", tasks)
	}

	resp = c.do(http.MethodPost, "/auth/refresh", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}

	if resp := c.do(http.MethodDelete, "/tasks/"+itoa(created.ID), nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	if resp := c.do(http.MethodGet, "/tasks/"+itoa(created.ID), nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestRouter_OwnerIsolation(t *testing.T) {
	srv := httptest.NewServer(taskhttp.NewHandler(discardLogger(), newTestDeps(t, 0)))
	defer srv.Close()

	login := func(name string) *apiClient {
		c := &apiClient{t: t, base: srv.URL}
		creds := map[string]string{"username": name, "password": "Str0ng!pw"}
		c.do(http.MethodPost, "/auth/register", creds)
		c.token = decode[map[string]any](t, c.do(http.MethodPost, "/auth/token", creds))["access_token"].(string)
		return c
	}
	alice, bob := login("alice"), login("bob")

	task := decode[model.Task](t, alice.do(http.MethodPost, "/tasks/", map[string]any{"title": "secret"}))

	if resp := bob.do(http.MethodGet, "/tasks/"+itoa(task.ID), nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for other user's task, got %d", resp.StatusCode)
	}
	if resp := bob.do(http.MethodDelete, "/tasks/"+itoa(task.ID), nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 deleting other user's task, got %d", resp.StatusCode)
	}
	if tasks := decode[[]model.Task](t, bob.do(http.MethodGet, "/tasks/", nil)); len(tasks) != 0 {
		t.Errorf("expected bob to see no tasks, got %d", len(tasks))
	}
}

func TestRouter_LoginRateLimit(t *testing.T) {
	srv := httptest.NewServer(taskhttp.NewHandler(discardLogger(), newTestDeps(t, 5)))
	defer srv.Close()
	c := &apiClient{t: t, base: srv.URL}
	bad := map[string]string{"username": "nobody", "password": "x"}

	for i := 0; i < 5; i++ {
		if resp := c.do(http.MethodPost, "/auth/token", bad); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
	if resp := c.do(http.MethodPost, "/auth/token", bad); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429 on 6th attempt, got %d", resp.StatusCode)
	}
	if resp := c.do(http.MethodGet, "/health", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("health must not be rate limited, got %d", resp.StatusCode)
	}
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	srv := httptest.NewServer(taskhttp.NewHandler(discardLogger(), newTestDeps(t, 0)))
	defer srv.Close()
	c := &apiClient{t: t, base: srv.URL}

	if resp := c.do(http.MethodGet, "/nope", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if resp := c.do(http.MethodDelete, "/health", nil); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
