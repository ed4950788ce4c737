package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"todo/internal/service"
)

// Request is one request received by a StubServer.
type Request struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

type failure struct {
	status int
	body   string
}

type wireTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// StubServer is an in-memory task server speaking the REST contract:
// GET/POST /tasks, PUT/DELETE /tasks/{id}. IDs are assigned "1", "2", ...
type StubServer struct {
	URL string

	mu       sync.Mutex
	tasks    []service.Task
	nextID   int
	requests []Request
	failures map[string]failure
	rawList  *string

	envelope    bool
	ackOnCreate bool
	reverse     bool
}

// NewStubServer starts a stub server seeded with tasks and stops it when the test ends.
func NewStubServer(t testing.TB, seed ...service.Task) *StubServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &StubServer{
		nextID:   1,
		failures: make(map[string]failure),
	}
	for _, task := range seed {
		s.tasks = append(s.tasks, task)
		if n, err := strconv.Atoi(task.ID); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}

	router := gin.New()
	router.Use(s.record, s.inject)
	router.GET("/tasks", s.handleList)
	router.POST("/tasks", s.handleCreate)
	router.PUT("/tasks/:id", s.handleUpdate)
	router.DELETE("/tasks/:id", s.handleDelete)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// FailWith makes every request with the given method answer status and body
// until ClearFailures is called.
func (s *StubServer) FailWith(method string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = failure{status: status, body: body}
}

// ClearFailures removes all injected failures.
func (s *StubServer) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// SetRawList makes GET /tasks answer 200 with body verbatim.
func (s *StubServer) SetRawList(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawList = &body
}

// SetEnvelope wraps GET /tasks responses as {"tasks": [...]}.
func (s *StubServer) SetEnvelope(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = on
}

// SetAckOnCreate answers POST /tasks with {"message": ...} instead of the task.
func (s *StubServer) SetAckOnCreate(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ackOnCreate = on
}

// SetReverse returns GET /tasks newest first.
func (s *StubServer) SetReverse(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reverse = on
}

// Tasks returns the server-side tasks in insertion order.
func (s *StubServer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Requests returns the requests received so far.
func (s *StubServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Count returns how many requests with the given method were received.
func (s *StubServer) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

// ResetRequests forgets the recorded requests.
func (s *StubServer) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *StubServer) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:    c.Request.Method,
		Path:      c.Request.URL.EscapedPath(),
		Body:      string(body),
		RequestID: c.GetHeader("X-Request-ID"),
	})
	s.mu.Unlock()
	c.Next()
}

func (s *StubServer) inject(c *gin.Context) {
	s.mu.Lock()
	f, ok := s.failures[c.Request.Method]
	s.mu.Unlock()
	if !ok {
		c.Next()
		return
	}
	c.Data(f.status, "application/json", []byte(f.body))
	c.Abort()
}

func (s *StubServer) handleList(c *gin.Context) {
	s.mu.Lock()
	raw, reverse, envelope := s.rawList, s.reverse, s.envelope
	list := make([]wireTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		list = append(list, wireTask{ID: t.ID, Title: t.Title, Completed: t.Completed})
	}
	s.mu.Unlock()

	if raw != nil {
		c.Data(http.StatusOK, "application/json", []byte(*raw))
		return
	}
	if reverse {
		slices.Reverse(list)
	}
	if envelope {
		c.JSON(http.StatusOK, gin.H{"tasks": list})
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *StubServer) handleCreate(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	s.mu.Lock()
	task := service.Task{ID: strconv.Itoa(s.nextID), Title: req.Title}
	s.nextID++
	s.tasks = append(s.tasks, task)
	ack := s.ackOnCreate
	s.mu.Unlock()

	if ack {
		c.JSON(http.StatusCreated, gin.H{"message": "task created"})
		return
	}
	c.JSON(http.StatusCreated, wireTask{ID: task.ID, Title: task.Title, Completed: task.Completed})
}

func (s *StubServer) handleUpdate(c *gin.Context) {
	var req struct {
		Completed *bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Completed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "completed required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == c.Param("id") {
			s.tasks[i].Completed = *req.Completed
			c.JSON(http.StatusOK, gin.H{"status": "updated"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
}

func (s *StubServer) handleDelete(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == c.Param("id") {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": "deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
}
