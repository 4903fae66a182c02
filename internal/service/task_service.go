package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// TaskCreate represents data required to create a task.
type TaskCreate struct {
	Title             string
	Description       string
	Status            model.TaskStatus
	Priority          model.TaskPriority
	DueDate           *time.Time
	IsRecurring       bool
	RecurrencePattern model.RecurrencePattern
	Dependencies      []string
}

// TaskUpdate is a partial patch. Nil fields are left untouched; a non-nil
// empty Dependencies slice clears the dependency set.
type TaskUpdate struct {
	Title             *string
	Description       *string
	Status            *model.TaskStatus
	Priority          *model.TaskPriority
	DueDate           *time.Time
	IsRecurring       *bool
	RecurrencePattern *model.RecurrencePattern
	Dependencies      []string
}

// TaskView is a task with its dependencies resolved to summaries.
type TaskView struct {
	model.Task
	Dependencies []model.TaskSummary `json:"dependencies"`
}

// TaskService wraps task-related business logic: dependency validation,
// completion and deletion gates, and recurrence scheduling.
type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns the user's tasks matching the filter.
func (s *TaskService) List(ctx context.Context, userID string, filter model.TaskFilter) ([]TaskView, error) {
	tasks, err := s.repo.Filter(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return s.resolveDependencies(ctx, tasks)
}

// Get returns a single task, or nil when it does not exist for this user.
// A malformed id is an error, a missing task is not.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*TaskView, error) {
	if !isValidID(taskID) {
		return nil, ErrInvalidID
	}

	task, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	views, err := s.resolveDependencies(ctx, []model.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input TaskCreate) (*TaskView, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if len(input.Dependencies) > 0 {
		if err := s.validateDependencies(ctx, input.Dependencies, userID, ""); err != nil {
			return nil, err
		}
	}

	task := model.Task{
		UserID:       userID,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		Dependencies: input.Dependencies,
	}
	if task.Status == "" {
		task.Status = model.TaskStatusNotDone
	}
	if task.Priority == "" {
		task.Priority = model.TaskPriorityMedium
	}

	if input.IsRecurring {
		pattern := input.RecurrencePattern
		if pattern == "" || pattern == model.RecurrenceNone {
			return nil, ErrInvalidRecurrence
		}
		now := time.Now().UTC()
		next := NextRecurrence(now, pattern)
		task.IsRecurring = true
		task.RecurrencePattern = pattern
		task.LastRecurrence = &now
		task.NextRecurrence = &next
	} else {
		task.RecurrencePattern = model.RecurrenceNone
	}

	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}

	views, err := s.resolveDependencies(ctx, []model.Task{task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch TaskUpdate) (*TaskView, error) {
	if !isValidID(taskID) {
		return nil, ErrInvalidID
	}

	task, err := s.repo.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrNotFound
	}

	if len(patch.Dependencies) > 0 {
		if err := s.validateDependencies(ctx, patch.Dependencies, userID, taskID); err != nil {
			return nil, err
		}
	}

	// Completion gate. Only a not-done -> done transition is checked, and
	// only against the stored dependency set, one level deep.
	if patch.Status != nil && *patch.Status == model.TaskStatusDone && task.Status != model.TaskStatusDone {
		unfinished, err := s.repo.FindUnfinished(ctx, task.Dependencies)
		if err != nil {
			return nil, err
		}
		if len(unfinished) > 0 {
			titles := make([]string, len(unfinished))
			for i, dep := range unfinished {
				titles[i] = dep.Title
			}
			return nil, &UnmetDependenciesError{Titles: titles}
		}
	}

	if patch.IsRecurring != nil || patch.RecurrencePattern != nil {
		if err := applyRecurrencePatch(task, patch); err != nil {
			return nil, err
		}
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Dependencies != nil {
		task.Dependencies = patch.Dependencies
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	views, err := s.resolveDependencies(ctx, []model.Task{*task})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Delete removes a task unless other tasks still depend on it. The dependent
// lookup spans all users; the delete itself is owner-scoped.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if !isValidID(taskID) {
		return ErrInvalidID
	}

	dependents, err := s.repo.FindDependents(ctx, taskID)
	if err != nil {
		return err
	}
	if len(dependents) > 0 {
		titles := make([]string, len(dependents))
		for i, dep := range dependents {
			titles[i] = dep.Title
		}
		return &HasDependentsError{Titles: titles}
	}

	deleted, err := s.repo.Delete(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// validateDependencies checks every candidate id: format first, then
// self-reference, then existence under the same owner. The first offending
// id wins.
func (s *TaskService) validateDependencies(ctx context.Context, ids []string, userID, excludeID string) error {
	for _, depID := range ids {
		if !isValidID(depID) {
			return &InvalidReferenceError{ID: depID}
		}
		if excludeID != "" && depID == excludeID {
			return ErrSelfReference
		}
		dep, err := s.repo.FindByID(ctx, userID, depID)
		if err != nil {
			return err
		}
		if dep == nil {
			return &DependencyNotFoundError{ID: depID}
		}
	}
	return nil
}

// applyRecurrencePatch handles the isRecurring/recurrencePattern transitions.
// Enabling recurrence, or changing the pattern of a recurring task, resets
// the schedule from now. Disabling clears it.
func applyRecurrencePatch(task *model.Task, patch TaskUpdate) error {
	recurring := task.IsRecurring
	if patch.IsRecurring != nil {
		recurring = *patch.IsRecurring
	}

	if !recurring {
		task.IsRecurring = false
		task.RecurrencePattern = model.RecurrenceNone
		task.NextRecurrence = nil
		return nil
	}

	pattern := task.RecurrencePattern
	if patch.RecurrencePattern != nil {
		pattern = *patch.RecurrencePattern
	}
	if pattern == "" || pattern == model.RecurrenceNone {
		return ErrInvalidRecurrence
	}

	if !task.IsRecurring || pattern != task.RecurrencePattern {
		now := time.Now().UTC()
		next := NextRecurrence(now, pattern)
		task.LastRecurrence = &now
		task.NextRecurrence = &next
	}
	task.IsRecurring = true
	task.RecurrencePattern = pattern
	return nil
}

// resolveDependencies turns raw dependency ids into summaries with one batch
// fetch. Ids that no longer resolve are skipped.
func (s *TaskService) resolveDependencies(ctx context.Context, tasks []model.Task) ([]TaskView, error) {
	idSet := make(map[string]struct{})
	for _, task := range tasks {
		for _, depID := range task.Dependencies {
			idSet[depID] = struct{}{}
		}
	}

	summaries := make(map[string]model.TaskSummary, len(idSet))
	if len(idSet) > 0 {
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		deps, err := s.repo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			summaries[dep.ID] = model.TaskSummary{ID: dep.ID, Title: dep.Title, Status: dep.Status}
		}
	}

	views := make([]TaskView, len(tasks))
	for i, task := range tasks {
		view := TaskView{Task: task}
		for _, depID := range task.Dependencies {
			if summary, ok := summaries[depID]; ok {
				view.Dependencies = append(view.Dependencies, summary)
			}
		}
		views[i] = view
	}
	return views, nil
}

func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
