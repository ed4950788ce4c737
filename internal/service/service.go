// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

var (
	// ErrMissingID is returned when an operation needs a task ID and none was given.
	ErrMissingID = errors.New("task id required")

	// ErrMissingTitle is returned when CreateTask is called with an empty title.
	ErrMissingTitle = errors.New("task title required")

	// ErrNotFound is matched by backend errors for tasks the server does not know.
	ErrNotFound = errors.New("not found")
)

// Service is the request/response boundary to the task server.
// Implementations never hold task state of their own and never retry.
// Commands and the controller never import a backend package directly.
type Service interface {
	// ListTasks returns every task in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task with the given title.
	// The returned task carries the server-assigned ID when the server echoes it back;
	// otherwise ID is empty.
	CreateTask(ctx context.Context, title string) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// SetCompletion sets the completed flag of a task.
	SetCompletion(ctx context.Context, id string, completed bool) error
}
