package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mattheweller/vibesana/internal/domain"
	"github.com/mattheweller/vibesana/internal/errors"
	"github.com/mattheweller/vibesana/internal/store"
)

// Permissive CORS policy matching the calling UI's expectations.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "GET, POST, PATCH, DELETE, OPTIONS",
}

// breakdownRequest is the body of a breakdown call.
type breakdownRequest struct {
	Description string `json:"description"`
}

// breakdownResponse is the success envelope.
type breakdownResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// errorResponse is the uniform error envelope. Tasks is always present
// (and empty) so callers never see a malformed body.
type errorResponse struct {
	Error string        `json:"error"`
	Tasks []domain.Task `json:"tasks"`
}

func setCORS(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	setCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err.Error())
	}
}

func (s *Server) writeBreakdownError(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: message,
		Tasks: []domain.Task{},
	})
}

// recovered wraps a handler so an uncaught panic still produces the
// uniform error envelope instead of a dropped connection.
func (s *Server) recovered(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", "path", r.URL.Path, "panic", rec)
				s.writeBreakdownError(w, "internal server error")
			}
		}()
		next(w, r)
	}
}

// handleBreakdown handles POST /api/v1/ai-task-breakdown.
//
// A cross-origin preflight returns immediately with CORS headers and no
// body. A missing or empty description produces the error envelope; a
// provider failure likewise. Malformed model output never fails the
// request (the service substitutes the fallback list).
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		setCORS(w)
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
			Error: "method not allowed",
			Tasks: []domain.Task{},
		})
		return
	}

	var req breakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBreakdownError(w, "Invalid request body")
		return
	}

	result, err := s.service.Breakdown(r.Context(), req.Description)
	if err != nil {
		// The error message is already sanitized; provider bodies only
		// reach the logs.
		if verr, ok := err.(*errors.VibesanaError); ok {
			s.writeBreakdownError(w, verr.Message)
		} else {
			s.writeBreakdownError(w, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, breakdownResponse{Tasks: result.Tasks})
}

// createTaskRequest is the body for creating a task.
type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// handleTasks handles /api/v1/tasks (list and create).
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		setCORS(w)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		tasks, err := s.tasks.List(r.Context())
		if err != nil {
			s.logger.WithError(err).Error("failed to list tasks")
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list tasks"})
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})

	case http.MethodPost:
		var req createTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		if req.Status == "" {
			req.Status = string(domain.StatusTodo)
		}
		task := domain.Task{
			Title:       req.Title,
			Description: req.Description,
			Priority:    domain.Priority(req.Priority),
			Status:      domain.Status(req.Status),
		}
		if err := task.Validate(); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		created, err := s.tasks.Create(r.Context(), task)
		if err != nil {
			s.logger.WithError(err).Error("failed to create task")
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create task"})
			return
		}
		s.writeJSON(w, http.StatusCreated, created)

	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handleTaskByID handles /api/v1/tasks/{id} (get, update, delete).
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/tasks/")
	if id == "" || strings.Contains(id, "/") {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	switch r.Method {
	case http.MethodOptions:
		setCORS(w)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		task, err := s.tasks.Get(r.Context(), id)
		if err != nil {
			s.writeTaskError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, task)

	case http.MethodPatch:
		var update store.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		task, err := s.tasks.ApplyUpdate(r.Context(), id, update)
		if err != nil {
			s.writeTaskError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, task)

	case http.MethodDelete:
		if err := s.tasks.Delete(r.Context(), id); err != nil {
			s.writeTaskError(w, err)
			return
		}
		setCORS(w)
		w.WriteHeader(http.StatusNoContent)

	default:
		s.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// writeTaskError maps store errors onto HTTP statuses.
func (s *Server) writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.IsCode(err, errors.ErrCodeStoreNotFound):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
	case errors.IsCode(err, errors.ErrCodeValidationBadPayload):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task payload"})
	default:
		s.logger.WithError(err).Error("task store operation failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
