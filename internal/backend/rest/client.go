// Package rest implements the service.Service interface against a JSON task server.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

const (
	// CollectionPath is the task collection resource below the base URL.
	CollectionPath = "tasks"

	// RequestIDHeader carries a per-request id for correlating logs.
	RequestIDHeader = "X-Request-ID"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// Client implements service.Service over HTTP.
// It has no retry or timeout policy: deadlines come from the caller's context.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	logger  *log.Logger
}

// New creates a client for the configured base URL.
func New(cfg *config.Config, logger *log.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg.BaseURL, http.DefaultClient, logger)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBaseURL, baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		http:    httpClient,
		baseURL: u,
		logger:  logger,
	}, nil
}

// ListTasks returns every task in server order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	body, err := c.do(ctx, http.MethodGet, c.collectionURL(), nil)
	if err != nil {
		return nil, err
	}
	return decodeTaskList(body)
}

// CreateTask creates a task. Servers that answer with an acknowledgement instead of
// the created task yield a Task with the submitted title and an empty ID.
func (c *Client) CreateTask(ctx context.Context, title string) (service.Task, error) {
	if title == "" {
		return service.Task{}, service.ErrMissingTitle
	}

	body, err := c.do(ctx, http.MethodPost, c.collectionURL(), createRequest{Title: title})
	if err != nil {
		return service.Task{}, err
	}

	task, ok, err := decodeCreated(body)
	if err != nil {
		return service.Task{}, err
	}
	if !ok {
		return service.Task{Title: title}, nil
	}
	if task.Title == "" {
		task.Title = title
	}
	return task, nil
}

// DeleteTask deletes a task. Any response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return service.ErrMissingID
	}
	_, err := c.do(ctx, http.MethodDelete, c.taskURL(id), nil)
	return err
}

// SetCompletion sets the completed flag of a task. Any response body is ignored.
func (c *Client) SetCompletion(ctx context.Context, id string, completed bool) error {
	if id == "" {
		return service.ErrMissingID
	}
	_, err := c.do(ctx, http.MethodPut, c.taskURL(id), completionRequest{Completed: completed})
	return err
}

func (c *Client) collectionURL() string {
	return c.baseURL.JoinPath(CollectionPath).String()
}

func (c *Client) taskURL(id string) string {
	// Escape first so ids containing '/' stay one path segment.
	return c.baseURL.JoinPath(CollectionPath, url.PathEscape(id)).String()
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.Must(uuid.NewV7()).String()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "url", target, "request_id", requestID, "err", err)
		return nil, wrapError(method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, wrapError(method, target, err)
	}

	c.logger.Debug("request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", requestID,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

type createRequest struct {
	Title string `json:"title"`
}

type completionRequest struct {
	Completed bool `json:"completed"`
}
