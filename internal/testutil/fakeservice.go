// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"todo/internal/service"
)

// Operation names used for call counting.
const (
	OpList          = "list"
	OpCreate        = "create"
	OpDelete        = "delete"
	OpSetCompletion = "set-completion"
)

// CompletionCall records one SetCompletion invocation.
type CompletionCall struct {
	ID        string
	Completed bool
}

// FakeService is an in-memory implementation of service.Service for testing.
// Tasks keep insertion order; IDs are "1", "2", ... in creation order.
type FakeService struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
	calls  map[string]int

	completions []CompletionCall
	titles      []string

	// BeforeCreate, if set, runs at the start of CreateTask without holding the lock.
	BeforeCreate func(title string)

	// Error injection for testing
	ListTasksErr     error
	CreateTaskErr    error
	DeleteTaskErr    error
	SetCompletionErr error
}

// NewFakeService creates a new FakeService holding the given tasks.
func NewFakeService(tasks ...service.Task) *FakeService {
	f := &FakeService{
		calls:  make(map[string]int),
		nextID: 1,
	}
	for _, t := range tasks {
		f.AddTask(t.ID, t.Title, t.Completed)
	}
	return f
}

// AddTask adds a task directly, bypassing error injection and call counting.
func (f *FakeService) AddTask(id, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Completed: completed})
	if n, err := strconv.Atoi(id); err == nil && n >= f.nextID {
		f.nextID = n + 1
	}
}

// Snapshot returns the server-side tasks.
func (f *FakeService) Snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// Calls returns how many times an operation was invoked, failed calls included.
func (f *FakeService) Calls(op string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[op]
}

// Completions returns the SetCompletion calls in order.
func (f *FakeService) Completions() []CompletionCall {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]CompletionCall, len(f.completions))
	copy(result, f.completions)
	return result
}

// CreatedTitles returns the titles passed to CreateTask in order.
func (f *FakeService) CreatedTitles() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]string, len(f.titles))
	copy(result, f.titles)
	return result
}

func (f *FakeService) count(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.count(OpList)
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Snapshot(), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title string) (service.Task, error) {
	f.count(OpCreate)
	if f.BeforeCreate != nil {
		f.BeforeCreate(title)
	}
	f.mu.Lock()
	f.titles = append(f.titles, title)
	f.mu.Unlock()

	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	if title == "" {
		return service.Task{}, service.ErrMissingTitle
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{ID: strconv.Itoa(f.nextID), Title: title}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	f.count(OpDelete)
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// SetCompletion implements service.Service.
func (f *FakeService) SetCompletion(ctx context.Context, id string, completed bool) error {
	f.count(OpSetCompletion)
	f.mu.Lock()
	f.completions = append(f.completions, CompletionCall{ID: id, Completed: completed})
	f.mu.Unlock()

	if f.SetCompletionErr != nil {
		return f.SetCompletionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Completed = completed
			return nil
		}
	}
	return service.ErrNotFound
}
