package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todo/internal/backend/rest"
	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/testutil"
)

func newClient(t *testing.T, baseURL string) *rest.Client {
	t.Helper()
	c, err := rest.NewWithHTTPClient(baseURL, nil, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "localhost:5000", "ftp://tasks.local", "http://"} {
		_, err := rest.New(&config.Config{BaseURL: base}, nil)
		if !errors.Is(err, config.ErrInvalidBaseURL) {
			t.Errorf("base %q: expected ErrInvalidBaseURL, got %v", base, err)
		}
	}
}

func TestListTasks_ServerOrder(t *testing.T) {
	srv := testutil.NewStubServer(t,
		service.Task{ID: "1", Title: "buy milk"},
		service.Task{ID: "2", Title: "walk dog", Completed: true},
	)
	c := newClient(t, srv.URL)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []service.Task{
		{ID: "1", Title: "buy milk"},
		{ID: "2", Title: "walk dog", Completed: true},
	}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d: expected %+v, got %+v", i, want[i], tasks[i])
		}
	}

	reqs := srv.Requests()
	if len(reqs) != 1 || reqs[0].Method != http.MethodGet || reqs[0].Path != "/tasks" {
		t.Errorf("unexpected requests: %+v", reqs)
	}
	if reqs[0].RequestID == "" {
		t.Error("expected a request id header")
	}
}

func TestListTasks_NoClientSideSorting(t *testing.T) {
	srv := testutil.NewStubServer(t,
		service.Task{ID: "1", Title: "a"},
		service.Task{ID: "2", Title: "b"},
		service.Task{ID: "3", Title: "c"},
	)
	srv.SetReverse(true)
	c := newClient(t, srv.URL)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{tasks[0].ID, tasks[1].ID, tasks[2].ID}
	if got[0] != "3" || got[1] != "2" || got[2] != "1" {
		t.Errorf("expected server order [3 2 1], got %v", got)
	}
}

func TestListTasks_Envelope(t *testing.T) {
	srv := testutil.NewStubServer(t, service.Task{ID: "1", Title: "buy milk"})
	srv.SetEnvelope(true)
	c := newClient(t, srv.URL)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestListTasks_Empty(t *testing.T) {
	srv := testutil.NewStubServer(t)
	c := newClient(t, srv.URL)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestListTasks_MissingCompletedIsFalse(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.SetRawList(`[{"id":"9","title":"legacy"}]`)
	c := newClient(t, srv.URL)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Completed {
		t.Errorf("expected one open task, got %+v", tasks)
	}
}

func TestListTasks_NullFields(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.SetRawList(`[{"id":"1","title":null,"completed":null},{"id":"2","title":"x","completed":true}]`)
	c := newClient(t, srv.URL)

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []service.Task{{ID: "1"}, {ID: "2", Title: "x", Completed: true}}
	if len(tasks) != len(want) || tasks[0] != want[0] || tasks[1] != want[1] {
		t.Errorf("expected %+v, got %+v", want, tasks)
	}
}

func TestListTasks_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"empty", ``},
		{"null", `null`},
		{"object without tasks", `{"status":"ok"}`},
		{"missing id", `[{"title":"x","completed":false}]`},
		{"numeric id", `[{"id":1,"title":"x"}]`},
		{"empty id", `[{"id":"","title":"x"}]`},
		{"completed not bool", `[{"id":"1","title":"x","completed":"yes"}]`},
		{"item not object", `["buy milk"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testutil.NewStubServer(t)
			srv.SetRawList(tt.body)
			c := newClient(t, srv.URL)

			_, err := c.ListTasks(context.Background())
			if !errors.Is(err, rest.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestListTasks_HTTPError(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.FailWith(http.MethodGet, http.StatusInternalServerError, `{"error":"database unavailable"}`)
	c := newClient(t, srv.URL)

	_, err := c.ListTasks(context.Background())
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "database unavailable" {
		t.Errorf("expected server message, got %q", apiErr.Message)
	}
}

func TestListTasks_HTTPErrorWithoutBody(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.FailWith(http.MethodGet, http.StatusBadGateway, ``)
	c := newClient(t, srv.URL)

	_, err := c.ListTasks(context.Background())
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "bad gateway" {
		t.Errorf("expected status text, got %q", apiErr.Message)
	}
}

func TestListTasks_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()
	c := newClient(t, base)

	_, err := c.ListTasks(context.Background())
	var reqErr *rest.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", reqErr.Method)
	}
}

func TestListTasks_ContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ListTasks(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCreateTask(t *testing.T) {
	srv := testutil.NewStubServer(t, service.Task{ID: "1", Title: "buy milk"})
	c := newClient(t, srv.URL)

	task, err := c.CreateTask(context.Background(), "walk dog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := service.Task{ID: "2", Title: "walk dog"}
	if task != want {
		t.Errorf("expected %+v, got %+v", want, task)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodPost || reqs[0].Path != "/tasks" {
		t.Errorf("unexpected request %s %s", reqs[0].Method, reqs[0].Path)
	}
	if reqs[0].Body != `{"title":"walk dog"}` {
		t.Errorf("unexpected body %q", reqs[0].Body)
	}
}

func TestCreateTask_AcknowledgementOnly(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.SetAckOnCreate(true)
	c := newClient(t, srv.URL)

	task, err := c.CreateTask(context.Background(), "walk dog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "" {
		t.Errorf("client must not invent an id, got %q", task.ID)
	}
	if task.Title != "walk dog" {
		t.Errorf("expected submitted title, got %q", task.Title)
	}
}

func TestCreateTask_EmptyTitleSendsNothing(t *testing.T) {
	srv := testutil.NewStubServer(t)
	c := newClient(t, srv.URL)

	_, err := c.CreateTask(context.Background(), "")
	if !errors.Is(err, service.ErrMissingTitle) {
		t.Errorf("expected ErrMissingTitle, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestCreateTask_WhitespaceTitleIsSent(t *testing.T) {
	// Business validation belongs to the controller.
	srv := testutil.NewStubServer(t)
	c := newClient(t, srv.URL)

	if _, err := c.CreateTask(context.Background(), "  "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := srv.Count(http.MethodPost); n != 1 {
		t.Errorf("expected 1 POST, got %d", n)
	}
}

func TestCreateTask_ServerRejects(t *testing.T) {
	srv := testutil.NewStubServer(t)
	srv.FailWith(http.MethodPost, http.StatusBadRequest, `{"message":"Titre manquant"}`)
	c := newClient(t, srv.URL)

	_, err := c.CreateTask(context.Background(), "x")
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Titre manquant" {
		t.Errorf("expected message field, got %q", apiErr.Message)
	}
}

func TestCreateTask_MalformedTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":42,"title":"x"}`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	_, err := c.CreateTask(context.Background(), "x")
	if !errors.Is(err, rest.ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestCreateTask_NullFieldsInEcho(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"3","title":null,"completed":null}`))
	}))
	defer srv.Close()
	c := newClient(t, srv.URL)

	task, err := c.CreateTask(context.Background(), "walk dog")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "3" || task.Title != "walk dog" || task.Completed {
		t.Errorf("expected created task 3 with submitted title, got %+v", task)
	}
}

func TestDeleteTask(t *testing.T) {
	srv := testutil.NewStubServer(t,
		service.Task{ID: "1", Title: "buy milk"},
		service.Task{ID: "2", Title: "walk dog"},
	)
	c := newClient(t, srv.URL)

	if err := c.DeleteTask(context.Background(), "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reqs := srv.Requests()
	if reqs[0].Method != http.MethodDelete || reqs[0].Path != "/tasks/2" {
		t.Errorf("unexpected request %s %s", reqs[0].Method, reqs[0].Path)
	}
	if tasks := srv.Tasks(); len(tasks) != 1 || tasks[0].ID != "1" {
		t.Errorf("unexpected server tasks: %+v", tasks)
	}
}

func TestDeleteTask_NotFound(t *testing.T) {
	srv := testutil.NewStubServer(t)
	c := newClient(t, srv.URL)

	err := c.DeleteTask(context.Background(), "404")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask_MissingID(t *testing.T) {
	srv := testutil.NewStubServer(t)
	c := newClient(t, srv.URL)

	if err := c.DeleteTask(context.Background(), ""); !errors.Is(err, service.ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestSetCompletion(t *testing.T) {
	srv := testutil.NewStubServer(t, service.Task{ID: "1", Title: "buy milk"})
	c := newClient(t, srv.URL)

	if err := c.SetCompletion(context.Background(), "1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reqs := srv.Requests()
	if reqs[0].Method != http.MethodPut || reqs[0].Path != "/tasks/1" {
		t.Errorf("unexpected request %s %s", reqs[0].Method, reqs[0].Path)
	}
	if reqs[0].Body != `{"completed":true}` {
		t.Errorf("unexpected body %q", reqs[0].Body)
	}
	if !srv.Tasks()[0].Completed {
		t.Error("expected task to be completed on the server")
	}

	if err := c.SetCompletion(context.Background(), "1", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := srv.Requests()[1].Body; body != `{"completed":false}` {
		t.Errorf("unexpected body %q", body)
	}
}

func TestSetCompletion_MissingID(t *testing.T) {
	srv := testutil.NewStubServer(t)
	c := newClient(t, srv.URL)

	if err := c.SetCompletion(context.Background(), "", true); !errors.Is(err, service.ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestTaskURL_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
	}))
	defer srv.Close()
	c := newClient(t, srv.URL+"/api")

	if err := c.DeleteTask(context.Background(), "a/b c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/tasks/a%2Fb%20c" {
		t.Errorf("unexpected path %q", gotPath)
	}
}
