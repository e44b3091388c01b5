package tasksource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avolkova/tasknotify/internal/config"
	"github.com/avolkova/tasknotify/internal/domain"
)

// Source pulls task snapshots from a remote registry.
type Source interface {
	// Fetch returns the current snapshot of all tasks.
	Fetch(ctx context.Context) ([]domain.Task, error)
}

// Client fetches task snapshots over HTTP from the task registry's pull API.
// Every fetch is bounded by the configured timeout so a hung registry cannot
// stall the reconciliation loop indefinitely.
type Client struct {
	baseURL    string
	fetchLimit int
	httpClient *http.Client
}

// NewClient creates a Client for the configured task source.
func NewClient(cfg config.TaskSourceConfig) *Client {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		fetchLimit: cfg.FetchLimit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Ensure Client implements Source
var _ Source = (*Client)(nil)

// Fetch performs GET {base_url}/tasks?limit=N and decodes the JSON array.
// Unknown fields on each task are ignored; due dates stay raw so individual
// malformed records can be skipped by the caller rather than failing the
// whole snapshot.
func (c *Client) Fetch(ctx context.Context) ([]domain.Task, error) {
	endpoint, err := url.JoinPath(c.baseURL, "tasks")
	if err != nil {
		return nil, fmt.Errorf("failed to build task source URL: %w", err)
	}
	endpoint += "?limit=" + strconv.Itoa(c.fetchLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build task source request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("task source returned status %d", resp.StatusCode)
	}

	var tasks []domain.Task
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("failed to decode task snapshot: %w", err)
	}

	return tasks, nil
}
