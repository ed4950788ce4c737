// Package controller holds the task list shown to the user and keeps it in
// step with the task server.
//
// The controller never patches its list locally. After every successful
// mutation it applies its SyncPolicy; the only policy is FullResync, which
// re-fetches the whole collection and replaces the list wholesale. A failed
// mutation leaves the list, and the draft, exactly as they were.
package controller

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/logging"
	"todo/internal/service"
)

// SyncPolicy decides how local state follows a successful mutation.
type SyncPolicy int

const (
	// FullResync re-fetches the full task list after every successful mutation.
	FullResync SyncPolicy = iota
)

func (p SyncPolicy) String() string {
	switch p {
	case FullResync:
		return "full-resync"
	default:
		return fmt.Sprintf("SyncPolicy(%d)", int(p))
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithPolicy sets the sync policy. The default is FullResync.
func WithPolicy(p SyncPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

// WithRequestTimeout bounds every service call. Zero means no timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller is safe for concurrent use. Its lock is never held across a
// service call, so request chains may overlap; the refresh that completes
// last determines the list.
type Controller struct {
	svc     service.Service
	policy  SyncPolicy
	timeout time.Duration
	logger  *log.Logger

	mu          sync.RWMutex
	tasks       []service.Task
	draft       string
	err         error
	initialized bool
}

// New creates a controller over svc with an empty list and draft.
func New(svc service.Service, opts ...Option) *Controller {
	c := &Controller{
		svc:    svc,
		policy: FullResync,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured sync policy.
func (c *Controller) Policy() SyncPolicy {
	return c.policy
}

// Tasks returns a copy of the current snapshot.
func (c *Controller) Tasks() []service.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tasks)
}

// Draft returns the pending title for a not-yet-created task.
func (c *Controller) Draft() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft
}

// SetDraft replaces the pending title.
func (c *Controller) SetDraft(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = title
}

// Err returns the error of the most recent operation, or nil if it succeeded.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Initialize refreshes on first activation. Later calls do nothing, even if
// the first refresh failed; use Refresh to retry.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Refresh replaces the snapshot with the server's list, order included.
// On failure the snapshot is left unchanged.
func (c *Controller) Refresh(ctx context.Context) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	tasks, err := c.svc.ListTasks(ctx)
	if err != nil {
		return c.fail("refresh", err)
	}

	c.mu.Lock()
	c.tasks = tasks
	c.err = nil
	c.mu.Unlock()
	return nil
}

// SubmitDraft creates a task from the draft. A draft that is empty after
// trimming is ignored: no request is sent, the draft is kept and submitted
// is false. The draft is sent as typed, without trimming. On success the
// draft is cleared unless it was changed while the request was pending.
func (c *Controller) SubmitDraft(ctx context.Context) (submitted bool, err error) {
	title := c.Draft()
	if strings.TrimSpace(title) == "" {
		return false, nil
	}

	if err := c.call(ctx, func(ctx context.Context) error {
		_, err := c.svc.CreateTask(ctx, title)
		return err
	}); err != nil {
		return true, c.fail("create task", err)
	}

	// Keep anything typed while the request was in flight.
	c.mu.Lock()
	if c.draft == title {
		c.draft = ""
	}
	c.mu.Unlock()

	return true, c.afterMutation(ctx)
}

// RemoveTask deletes the task with the given id.
func (c *Controller) RemoveTask(ctx context.Context, id string) error {
	if err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.DeleteTask(ctx, id)
	}); err != nil {
		return c.fail("delete task", err)
	}
	return c.afterMutation(ctx)
}

// ToggleTask flips the completed flag of task as the caller last saw it.
func (c *Controller) ToggleTask(ctx context.Context, task service.Task) error {
	completed := !task.Completed
	if err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.SetCompletion(ctx, task.ID, completed)
	}); err != nil {
		return c.fail("toggle task", err)
	}
	return c.afterMutation(ctx)
}

func (c *Controller) afterMutation(ctx context.Context) error {
	switch c.policy {
	case FullResync:
		return c.Refresh(ctx)
	default:
		return c.fail("sync", fmt.Errorf("unsupported sync policy: %s", c.policy))
	}
}

func (c *Controller) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()
	return fn(ctx)
}

func (c *Controller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// fail records and returns err wrapped with op.
func (c *Controller) fail(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	c.logger.Debug("operation failed", "op", op, "err", err)

	c.mu.Lock()
	c.err = wrapped
	c.mu.Unlock()
	return wrapped
}
