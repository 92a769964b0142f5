// Package api is a typed client for the task REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", creds, nil)
}

func (c *Client) Login(ctx context.Context, creds Credentials) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/token", "", creds, &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, token string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", token, nil, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (string, error) {
	var out struct {
		Username string `json:"username"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out)
	return out.Username, err
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, in model.TaskInput) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/tasks/", token, in, &out)
	return out, err
}

// UpdateTask replaces every editable field of the task.
func (c *Client) UpdateTask(ctx context.Context, token string, id int64, in model.TaskInput) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPut, "/tasks/"+strconv.FormatInt(id, 10), token, in, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+strconv.FormatInt(id, 10), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError understands both the {"error":{code,message}} envelope and a bare
// {"detail": "..."} body.
func decodeError(resp *http.Response) error {
	se := &StatusError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		se.Code = envelope.Error.Code
		se.Message = envelope.Error.Message
		if se.Message == "" {
			se.Message = envelope.Detail
		}
	}
	return se
}
