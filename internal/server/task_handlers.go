package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"task-manager/internal/model"
	"task-manager/internal/service"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 500
)

type createTaskRequest struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"dueDate"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurrencePattern string     `json:"recurrencePattern"`
	Dependencies      []string   `json:"dependencies"`
}

type updateTaskRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Status            *string    `json:"status"`
	Priority          *string    `json:"priority"`
	DueDate           *time.Time `json:"dueDate"`
	IsRecurring       *bool      `json:"isRecurring"`
	RecurrencePattern *string    `json:"recurrencePattern"`
	Dependencies      []string   `json:"dependencies"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	q := r.URL.Query()
	filter := model.TaskFilter{
		Status:   model.TaskStatus(q.Get("status")),
		Priority: model.TaskPriority(q.Get("priority")),
		Search:   q.Get("search"),
		SortBy:   q.Get("sort"),
		Order:    model.SortOrder(q.Get("order")),
	}
	if filter.Order == "" {
		filter.Order = model.SortDesc
	}

	tasks, err := s.tasks.List(r.Context(), user.ID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []service.TaskView{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	task, err := s.tasks.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateCreateTask(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := s.tasks.Create(r.Context(), user.ID, service.TaskCreate{
		Title:             req.Title,
		Description:       req.Description,
		Status:            model.TaskStatus(req.Status),
		Priority:          model.TaskPriority(req.Priority),
		DueDate:           req.DueDate,
		IsRecurring:       req.IsRecurring,
		RecurrencePattern: model.RecurrencePattern(req.RecurrencePattern),
		Dependencies:      req.Dependencies,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateUpdateTask(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := service.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		IsRecurring:  req.IsRecurring,
		Dependencies: req.Dependencies,
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := model.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}
	if req.RecurrencePattern != nil {
		pattern := model.RecurrencePattern(*req.RecurrencePattern)
		patch.RecurrencePattern = &pattern
	}

	task, err := s.tasks.Update(r.Context(), user.ID, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.tasks.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted successfully"})
}

func validateCreateTask(req createTaskRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	if len(req.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	if req.Status != "" && !model.IsValidTaskStatus(req.Status) {
		return fmt.Errorf("invalid status: %s", req.Status)
	}
	if req.Priority != "" && !model.IsValidTaskPriority(req.Priority) {
		return fmt.Errorf("invalid priority: %s", req.Priority)
	}
	if req.RecurrencePattern != "" && !model.IsValidRecurrencePattern(req.RecurrencePattern) {
		return fmt.Errorf("invalid recurrence pattern: %s", req.RecurrencePattern)
	}
	return nil
}

func validateUpdateTask(req updateTaskRequest) error {
	if req.Title == nil && req.Description == nil && req.Status == nil && req.Priority == nil &&
		req.DueDate == nil && req.IsRecurring == nil && req.RecurrencePattern == nil &&
		req.Dependencies == nil {
		return fmt.Errorf("at least one field must be provided")
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return fmt.Errorf("title is required")
		}
		if len(title) > maxTitleLength {
			return fmt.Errorf("title must be at most %d characters", maxTitleLength)
		}
	}
	if req.Description != nil && len(*req.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	if req.Status != nil && !model.IsValidTaskStatus(*req.Status) {
		return fmt.Errorf("invalid status: %s", *req.Status)
	}
	if req.Priority != nil && !model.IsValidTaskPriority(*req.Priority) {
		return fmt.Errorf("invalid priority: %s", *req.Priority)
	}
	if req.RecurrencePattern != nil && !model.IsValidRecurrencePattern(*req.RecurrencePattern) {
		return fmt.Errorf("invalid recurrence pattern: %s", *req.RecurrencePattern)
	}
	return nil
}
