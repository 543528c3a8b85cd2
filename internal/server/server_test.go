package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattheweller/vibesana/internal/breakdown"
	"github.com/mattheweller/vibesana/internal/domain"
	"github.com/mattheweller/vibesana/internal/health"
	"github.com/mattheweller/vibesana/internal/provider"
	"github.com/mattheweller/vibesana/internal/store"
)

// fakeProvider is a provider.Client returning canned completions.
type fakeProvider struct {
	content string
	err     error
}

func (f *fakeProvider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Completion{
		Content: f.content,
		Model:   "gpt-4o-mini",
		Usage:   provider.Usage{PromptTokens: 100, CompletionTokens: 40},
	}, nil
}

func (f *fakeProvider) IsAvailable() bool               { return true }
func (f *fakeProvider) Health(ctx context.Context) error { return nil }

const sixTaskArray = `[
	{"title": "Design login form", "description": "Layout and fields", "priority": "high", "status": "todo"},
	{"title": "Implement validation", "description": "Client and server side", "priority": "high", "status": "todo"},
	{"title": "Add session handling", "description": "Cookies and expiry", "priority": "medium", "status": "todo"},
	{"title": "Wire up backend auth", "description": "Password hashing", "priority": "high", "status": "todo"},
	{"title": "Add error states", "description": "Wrong password handling", "priority": "medium", "status": "todo"},
	{"title": "Polish styling", "description": "Match the design system", "priority": "low", "status": "todo"}
]`

func newTestServer(t *testing.T, client provider.Client) *Server {
	t.Helper()

	taskStore, err := store.New(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { taskStore.Close() })

	svc := breakdown.NewService(client, nil, nil)
	pm := health.NewProbeManager("test")
	return NewServer(svc, taskStore, pm, nil, Config{Address: ":0"})
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestBreakdownPreflight(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	rec := doRequest(s, http.MethodOptions, "/api/v1/ai-task-breakdown", "")

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight should return an empty body, got %s", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "authorization") {
		t.Errorf("allow-headers missing authorization: %q", got)
	}
}

func TestBreakdownSuccess(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	rec := doRequest(s, http.MethodPost, "/api/v1/ai-task-breakdown",
		`{"description": "Build a login page"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(resp.Tasks) != 6 {
		t.Errorf("tasks length = %d, want 6", len(resp.Tasks))
	}
	for i, task := range resp.Tasks {
		if task.Title == "" {
			t.Errorf("task %d missing title", i)
		}
		if task.Status != domain.StatusTodo {
			t.Errorf("task %d status = %s, want todo", i, task.Status)
		}
		if err := task.Priority.Validate(); err != nil {
			t.Errorf("task %d priority invalid: %v", i, err)
		}
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("success response missing CORS header")
	}
}

func TestBreakdownEmptyDescription(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	rec := doRequest(s, http.MethodPost, "/api/v1/ai-task-breakdown", `{"description": ""}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var resp struct {
		Error string        `json:"error"`
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error != "Task description is required" {
		t.Errorf("error = %q, want %q", resp.Error, "Task description is required")
	}
	if len(resp.Tasks) != 0 {
		t.Errorf("tasks should be empty on error, got %d", len(resp.Tasks))
	}
}

func TestBreakdownProviderError(t *testing.T) {
	s := newTestServer(t, &fakeProvider{err: &provider.Error{
		Status: http.StatusTooManyRequests,
		Body:   `{"error":{"message":"rate limit exceeded"}}`,
	}})

	rec := doRequest(s, http.MethodPost, "/api/v1/ai-task-breakdown",
		`{"description": "Build a login page"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var resp struct {
		Error string        `json:"error"`
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Error == "" {
		t.Error("error field should be present")
	}
	if len(resp.Tasks) != 0 {
		t.Errorf("tasks should be empty on error, got %d", len(resp.Tasks))
	}
	// Upstream details stay in the logs.
	if strings.Contains(resp.Error, "rate limit exceeded") {
		t.Errorf("provider body leaked into the response: %s", resp.Error)
	}
}

func TestBreakdownProseFallback(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: "Here are some ideas for your project."})

	rec := doRequest(s, http.MethodPost, "/api/v1/ai-task-breakdown",
		`{"description": "Build a login page"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	want := domain.FallbackTasks()
	if len(resp.Tasks) != len(want) {
		t.Fatalf("tasks length = %d, want %d", len(resp.Tasks), len(want))
	}
	for i := range want {
		if resp.Tasks[i] != want[i] {
			t.Errorf("fallback task %d = %+v, want %+v", i, resp.Tasks[i], want[i])
		}
	}
}

func TestBreakdownMalformedBody(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	rec := doRequest(s, http.MethodPost, "/api/v1/ai-task-breakdown", `{"description":`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var resp struct {
		Error string        `json:"error"`
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	// A body that does not parse is distinguished from a missing description.
	if resp.Error != "Invalid request body" {
		t.Errorf("error = %q, want %q", resp.Error, "Invalid request body")
	}
	if resp.Tasks == nil || len(resp.Tasks) != 0 {
		t.Errorf("error envelope should carry an empty tasks array: %s", rec.Body.String())
	}
}

func TestBreakdownMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	rec := doRequest(s, http.MethodGet, "/api/v1/ai-task-breakdown", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestTaskCRUD(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	// Create
	rec := doRequest(s, http.MethodPost, "/api/v1/tasks",
		`{"title": "Set up CI", "description": "Run tests on push", "priority": "medium"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	var created store.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created task should have an id")
	}
	// Status defaults to todo when omitted.
	if created.Status != domain.StatusTodo {
		t.Errorf("created status = %s, want todo", created.Status)
	}

	// Get
	rec = doRequest(s, http.MethodGet, "/api/v1/tasks/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}

	// List
	rec = doRequest(s, http.MethodGet, "/api/v1/tasks", "")
	if rec.Code != http.StatusOK {
		t.Errorf("list status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), created.ID) {
		t.Error("list should contain the created task")
	}

	// Update
	rec = doRequest(s, http.MethodPatch, "/api/v1/tasks/"+created.ID, `{"status": "in-progress"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	var updated store.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("invalid patch response: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("updated status = %s, want in-progress", updated.Status)
	}

	// Delete
	rec = doRequest(s, http.MethodDelete, "/api/v1/tasks/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	// Gone
	rec = doRequest(s, http.MethodGet, "/api/v1/tasks/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestTaskCreateValidation(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"description": "d", "priority": "low"}`},
		{"bad priority", `{"title": "t", "description": "d", "priority": "urgent"}`},
		{"malformed body", `{"title":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/v1/tasks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	rec := doRequest(s, http.MethodGet, "/health/live", "")
	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want 200", rec.Code)
	}

	// Startup probe fails until the server is started.
	rec = doRequest(s, http.MethodGet, "/health/startup", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("startup status before init = %d, want 503", rec.Code)
	}

	s.probeManager.MarkInitialized()
	rec = doRequest(s, http.MethodGet, "/health/startup", "")
	if rec.Code != http.StatusOK {
		t.Errorf("startup status after init = %d, want 200", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestShutdownFlagsReadiness(t *testing.T) {
	s := newTestServer(t, &fakeProvider{content: sixTaskArray})

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !s.IsShuttingDown() {
		t.Error("IsShuttingDown should report true after Shutdown")
	}

	rec := doRequest(s, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness during shutdown = %d, want 503", rec.Code)
	}
}
