// Package taskapi is the HTTP client for the task backend. Every call is a
// single round trip: no retries and no caching.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"taskdeck/domain/task"
	"taskdeck/internal/httpclient"
	"taskdeck/internal/metrics"
)

const (
	OpList       = "list"
	OpCreate     = "create"
	OpDelete     = "delete"
	OpExecute    = "execute"
	OpFindByName = "find_by_name"
)

var _ task.Gateway = (*Client)(nil)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client identification transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpclient.NewClient(cfg.Name),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// List returns every task in backend order.
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	body, err := c.do(ctx, OpList, http.MethodGet, "/tasks/", nil)
	if err != nil {
		return nil, err
	}
	return decodeTasks(body)
}

// Create asks the backend to store a new task and returns it with its ID.
func (c *Client) Create(ctx context.Context, nt task.NewTask) (*task.Task, error) {
	body, err := c.do(ctx, OpCreate, http.MethodPut, "/tasks/", nt)
	if err != nil {
		return nil, err
	}

	var created task.Task
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &created, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, OpDelete, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil)
	return err
}

// Execute runs the task's command on the backend and returns the captured
// output. The response is plain text, not JSON.
func (c *Client) Execute(ctx context.Context, id string) (string, error) {
	body, err := c.do(ctx, OpExecute, http.MethodPut, "/tasks/execute/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) FindByName(ctx context.Context, name string) ([]task.Task, error) {
	body, err := c.do(ctx, OpFindByName, http.MethodGet, "/tasks/find/by-name/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	return decodeTasks(body)
}

// Ping reports whether the backend answers at all. A 404 counts as an answer.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.roundTrip(ctx, http.MethodGet, "/tasks/", nil)
	if err != nil && !IsNotFound(err) {
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, body any) ([]byte, error) {
	start := time.Now()
	data, err := c.roundTrip(ctx, method, path, body)
	metrics.ObserveBackendRequest(operation, outcome(err), time.Since(start))
	return data, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	return respBody, nil
}

func decodeTasks(body []byte) ([]task.Task, error) {
	tasks := []task.Task{}
	if len(bytes.TrimSpace(body)) == 0 {
		return tasks, nil
	}
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.IsNotFound() {
			return metrics.OutcomeNotFound
		}
		return metrics.OutcomeHTTPError
	}
	return metrics.OutcomeTransportError
}
